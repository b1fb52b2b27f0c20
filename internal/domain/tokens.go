package domain

import "math"

// Token estimate divisors. These approximate characters-per-token for the
// downstream inference service; they are not a tokenizer.
const (
	// TextTokenDivisor applies to generic prose and markup-derived text.
	TextTokenDivisor = 4.0
	// CodeTokenDivisor applies to source code, which tokenizes denser.
	CodeTokenDivisor = 3.5
)

// EstimateTokens approximates the token count of generic text.
func EstimateTokens(text string) int {
	return estimate(text, TextTokenDivisor)
}

// EstimateCodeTokens approximates the token count of source code.
func EstimateCodeTokens(text string) int {
	return estimate(text, CodeTokenDivisor)
}

func estimate(text string, divisor float64) int {
	if text == "" {
		return 0
	}

	return int(math.Ceil(float64(len(text)) / divisor))
}

package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Structure summary bounds.
const (
	// maxSummaryDepth bounds the recursive structure summary to two levels
	// of nesting.
	maxSummaryDepth = 2
	// maxSummaryKeys is how many object keys are listed before the
	// "+N more keys" marker.
	maxSummaryKeys = 5
)

// invalidJSONMarker prefixes the raw text when the body is not valid JSON.
// Invalid JSON degrades to annotated passthrough rather than failing the
// whole extraction.
const invalidJSONMarker = "[INVALID JSON - returned as raw text]"

// JSONExtractor renders JSON as a structure summary followed by the
// pretty-printed document.
type JSONExtractor struct{}

// NewJSONExtractor creates a JSONExtractor.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{}
}

// ContentTypes implements Extractor. "+json" covers structured suffixes such
// as application/ld+json and application/hal+json.
func (e *JSONExtractor) ContentTypes() []string {
	return []string{"application/json", "+json"}
}

// Extract implements Extractor.
func (e *JSONExtractor) Extract(data []byte, srcURL string) (*Result, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return &Result{
			Text:     invalidJSONMarker + "\n\n" + string(data),
			Title:    titleFromURL(srcURL),
			Metadata: map[string]any{"valid": false},
		}, nil
	}

	pretty, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pretty-print json: %w", err)
	}

	result := &Result{
		Text:     "Structure:\n" + describeValue(root, 0) + "\n\nContent:\n" + string(pretty),
		Title:    titleFromURL(srcURL),
		Metadata: map[string]any{"valid": true},
	}

	switch value := root.(type) {
	case map[string]any:
		result.Metadata["type"] = "object"
		result.Metadata["keys"] = sortedKeys(value)

		if title, ok := value["title"].(string); ok {
			result.Title = title
		}
	case []any:
		result.Metadata["type"] = "array"
	default:
		result.Metadata["type"] = "value"
	}

	return result, nil
}

// describeValue renders a one-line-per-entry shape summary of a JSON value,
// bounded to maxSummaryDepth levels.
func describeValue(value any, depth int) string {
	switch v := value.(type) {
	case map[string]any:
		return describeObject(v, depth)
	case []any:
		return describeArray(v, depth)
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// describeObject summarizes an object's keys, recursing one level per key
// until the depth bound.
func describeObject(obj map[string]any, depth int) string {
	if len(obj) == 0 {
		return "{}"
	}

	if depth >= maxSummaryDepth {
		return fmt.Sprintf("{%d keys}", len(obj))
	}

	keys := sortedKeys(obj)

	shown := keys
	extra := 0

	if len(keys) > maxSummaryKeys {
		shown = keys[:maxSummaryKeys]
		extra = len(keys) - maxSummaryKeys
	}

	indent := strings.Repeat("  ", depth)
	lines := make([]string, 0, len(shown)+1)

	for _, key := range shown {
		lines = append(lines, fmt.Sprintf("%s%s: %s", indent, key, describeValue(obj[key], depth+1)))
	}

	if extra > 0 {
		lines = append(lines, fmt.Sprintf("%s+%d more keys", indent, extra))
	}

	return strings.Join(lines, "\n")
}

// describeArray summarizes an array as Array[N] of <item-shape>, taking the
// first element as representative.
func describeArray(arr []any, depth int) string {
	if len(arr) == 0 {
		return "Array[0]"
	}

	var itemShape string

	switch item := arr[0].(type) {
	case map[string]any:
		itemShape = fmt.Sprintf("object(%d keys)", len(item))
	case []any:
		itemShape = "array"
	default:
		itemShape = describeValue(item, depth+1)
	}

	return fmt.Sprintf("Array[%d] of %s", len(arr), itemShape)
}

// sortedKeys returns an object's keys in stable order.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Package report renders a markdown summary of a completed crawl.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/contextkit/corpora/internal/domain"
)

// maxErrorRows caps how many crawl errors the report lists.
const maxErrorRows = 25

// WriteMarkdown renders a crawl summary for source to w.
func WriteMarkdown(w io.Writer, source *domain.LoadedSource) error {
	md := markdown.NewMarkdown(w)

	md.H1("Crawl Report")

	if src, ok := source.Metadata[domain.MetaSource].(string); ok && src != "" {
		md.PlainText(fmt.Sprintf("Source: %s", src))
	}

	if loadedAt, ok := source.Metadata[domain.MetaLoadedAt].(string); ok && loadedAt != "" {
		md.PlainText(fmt.Sprintf("Completed: %s", loadedAt))
	}

	md.H2("Summary")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   summaryRows(source),
	})

	if errs := crawlErrors(source); len(errs) > 0 {
		md.H2("Errors")

		rows := make([][]string, 0, len(errs))
		for i, crawlErr := range errs {
			if i >= maxErrorRows {
				break
			}

			rows = append(rows, []string{crawlErr.URL, crawlErr.Reason})
		}

		md.Table(markdown.TableSet{
			Header: []string{"URL", "Reason"},
			Rows:   rows,
		})

		if len(errs) > maxErrorRows {
			md.PlainText(fmt.Sprintf("... and %d more", len(errs)-maxErrorRows))
		}
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

func summaryRows(source *domain.LoadedSource) [][]string {
	rows := [][]string{
		{"Pages loaded", strconv.Itoa(source.FileCount)},
		{"Total tokens", strconv.Itoa(source.TotalTokens)},
	}

	if skipped, ok := source.Metadata[domain.MetaPagesSkipped].(int); ok {
		rows = append(rows, []string{"Pages skipped", strconv.Itoa(skipped)})
	}

	if queued, ok := source.Metadata[domain.MetaPagesQueued].(int); ok {
		rows = append(rows, []string{"Pages left queued", strconv.Itoa(queued)})
	}

	if target, ok := source.Metadata[domain.MetaTargetTokens].(int); ok {
		rows = append(rows, []string{"Token target", strconv.Itoa(target)})
	}

	if stopped, ok := source.Metadata[domain.MetaStoppedBySubreqCap].(bool); ok && stopped {
		rows = append(rows, []string{"Stopped by subrequest cap", "yes"})
	}

	return rows
}

func crawlErrors(source *domain.LoadedSource) []domain.CrawlError {
	errs, ok := source.Metadata[domain.MetaErrors].([]domain.CrawlError)
	if !ok {
		return nil
	}

	return errs
}

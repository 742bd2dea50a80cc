// Package report prints human-readable progress and summaries for the CLI.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/toc"
)

const width = 70

var (
	rule = strings.Repeat("=", width)
	dash = strings.Repeat("-", width)
)

func mb(b int64) float64 { return float64(b) / 1024 / 1024 }

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func joinPages(ps []int) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ", ")
}

// Plan prints what the summary will keep. kept is the flattened page set.
func Plan(w io.Writer, details []toc.Detail, kept, total int) {
	fmt.Fprintf(w, "\n%s\nSUMMARY PLAN (80%% REDUCTION TARGET)\n%s\n", rule, rule)
	fmt.Fprintf(w, "\nWHAT WILL BE KEPT:\n%s\n", dash)
	for _, d := range details {
		fmt.Fprintf(w, "\n%s:\n  Pages: %s (%d pages)\n", d.Name, joinPages(d.Pages), len(d.Pages))
	}
	fmt.Fprintf(w, "\n%s\n", rule)
	if total > 0 {
		fmt.Fprintf(w, "Total pages to keep: %d out of %d\n", kept, total)
		fmt.Fprintf(w, "Reduction: %.1f%%\n", 100-pct(kept, total))
	} else {
		fmt.Fprintf(w, "Total pages to keep: %d\n", kept)
	}
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "\nCONTENT STRATEGY:\n")
	fmt.Fprintf(w, "  ✓ Keep: Definitions, concepts, comparisons, architecture overviews\n")
	fmt.Fprintf(w, "  ✗ Skip: Code examples, detailed implementations, numbered lists,\n")
	fmt.Fprintf(w, "          sub-bullets, hands-on tutorials, specific tools\n")
	fmt.Fprintf(w, "%s\n", rule)
}

// Creating prints the line shown before the summary is written.
func Creating(w io.Writer, keep, total int) {
	fmt.Fprintf(w, "\nCreating summary from %d pages...\n", total)
	fmt.Fprintf(w, "Keeping %d pages (%.1f%%)\n\n", keep, pct(keep, total))
}

// Sizes prints the before/after comparison of a summary.
func Sizes(w io.Writer, r split.SizeReport) {
	fmt.Fprintf(w, "\n%s\nSUMMARY CREATED\n%s\n", rule, rule)
	fmt.Fprintf(w, "Original pages: %d\n", r.OriginalPages)
	fmt.Fprintf(w, "Summary pages: %d\n", r.SummaryPages)
	fmt.Fprintf(w, "Page reduction: %.1f%%\n", r.PageReduction())
	fmt.Fprintf(w, "\nOriginal size: %.2f MB\n", mb(r.OriginalBytes))
	fmt.Fprintf(w, "Summary size: %.2f MB\n", mb(r.SummaryBytes))
	fmt.Fprintf(w, "Size reduction: %.1f%%\n", r.SizeReduction())
	fmt.Fprintf(w, "%s\n", rule)
}

// Sections prints the chapter list the section split cuts at.
func Sections(w io.Writer, names []string, starts []int) {
	line := strings.Repeat("=", 80)
	fmt.Fprintf(w, "%s\nMAJOR SECTIONS IDENTIFIED:\n%s\n", line, line)
	for i, n := range names {
		fmt.Fprintf(w, "Section: %s -> Page %d\n", n, starts[i])
	}
	fmt.Fprintf(w, "%s\n", line)
}

// File returns a Progress that prints one "Created:" line per output.
func File(w io.Writer) split.Progress {
	return func(f split.File) {
		name := filepath.Base(f.Path)
		switch {
		case len(f.Pages) > 0:
			fmt.Fprintf(w, "Created: %s (%d pages: %s)\n", name, f.PageCount, strings.Join(pages.Selection(f.Pages), ", "))
		case f.Range.IsZero():
			fmt.Fprintf(w, "Created: %s (%d pages)\n", name, f.PageCount)
		default:
			fmt.Fprintf(w, "Created: %s (%d pages, %d-%d)\n", name, f.PageCount, f.Range.Start, f.Range.End)
		}
	}
}

// Done prints the closing line of a split.
func Done(w io.Writer, res *split.Result) {
	fmt.Fprintf(w, "\nSplit complete! %d files created in: %s\n", len(res.Files), res.OutDir)
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "Skipped: %s (starts past the last page)\n", s)
	}
}

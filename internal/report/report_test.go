package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/report"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/toc"
)

func TestPlan(t *testing.T) {
	var buf bytes.Buffer
	kept, details := toc.Guidebook().KeepPages()
	report.Plan(&buf, details, len(kept), 384)

	out := buf.String()
	gt.True(t, strings.Contains(out, "Cover & TOC:\n  Pages: 1, 2, 3, 4, 5, 6 (6 pages)"))
	gt.True(t, strings.Contains(out, "Total pages to keep: 93 out of 384"))
	gt.True(t, strings.Contains(out, "Reduction: 75.8%"))
	gt.False(t, strings.Contains(out, "LLM Evaluation:"))
}

func TestSizes(t *testing.T) {
	var buf bytes.Buffer
	report.Sizes(&buf, split.SizeReport{
		OriginalPages: 384, SummaryPages: 93,
		OriginalBytes: 40 * 1024 * 1024, SummaryBytes: 10 * 1024 * 1024,
	})
	out := buf.String()
	gt.True(t, strings.Contains(out, "Page reduction: 75.8%"))
	gt.True(t, strings.Contains(out, "Original size: 40.00 MB"))
	gt.True(t, strings.Contains(out, "Size reduction: 75.0%"))
}

func TestFileAndDone(t *testing.T) {
	var buf bytes.Buffer
	report.File(&buf)(split.File{Path: "/x/01_LLMs.pdf", PageCount: 43, Range: pages.Range{Start: 7, End: 49}})
	report.Done(&buf, &split.Result{OutDir: "/x", Files: make([]split.File, 1), Skipped: []string{"Appendix"}})

	out := buf.String()
	gt.True(t, strings.Contains(out, "Created: 01_LLMs.pdf (43 pages, 7-49)"))
	gt.True(t, strings.Contains(out, "Split complete! 1 files created in: /x"))
	gt.True(t, strings.Contains(out, "Skipped: Appendix"))
}

func TestSections(t *testing.T) {
	var buf bytes.Buffer
	names, starts := toc.Guidebook().SectionStarts()
	report.Sections(&buf, names, starts)
	gt.True(t, strings.Contains(buf.String(), "Section: RAG -> Page 106"))
}

func TestFileListsSummaryPages(t *testing.T) {
	var buf bytes.Buffer
	report.File(&buf)(split.File{Path: "/x/Guide_Summary.pdf", PageCount: 5, Pages: []int{1, 2, 3, 9, 12}})
	report.File(&buf)(split.File{Path: "/x/empty.pdf"})

	out := buf.String()
	gt.True(t, strings.Contains(out, "Created: Guide_Summary.pdf (5 pages: 1-3, 9, 12)"))
	gt.False(t, strings.Contains(out, "1-12"))
	gt.True(t, strings.Contains(out, "Created: empty.pdf (0 pages)\n"))
}

// Package split implements the three page operations over one source PDF: fixed-size
// chunks, table-of-contents sections and the executive summary.
package split

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfslicer/internal/metrics"
	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/pdfdoc"
	"github.com/local/pdfslicer/internal/toc"
)

// Op names an operation; it is also the metrics label.
type Op string

const (
	OpChunks   Op = "chunks"
	OpSections Op = "sections"
	OpSummary  Op = "summary"
)

// DefaultPagesPerSplit is the chunk size used when none is configured.
const DefaultPagesPerSplit = 50

// Source is the part of pdfdoc.Document the operations need.
type Source interface {
	Path() string
	Size() int64
	PageCount() int
	WriteFile(path string, pageNrs []int) (int, int64, error)
}

var _ Source = (*pdfdoc.Document)(nil)

// File describes one written output.
type File struct {
	Path      string      `json:"path"`
	Name      string      `json:"name,omitempty"`
	Range     pages.Range `json:"range"`
	PageCount int         `json:"page_count"`
	Bytes     int64       `json:"bytes"`

	// Pages is set instead of Range when the output is not contiguous.
	Pages []int `json:"pages,omitempty"`
}

// Result lists everything an operation wrote.
type Result struct {
	Op      Op       `json:"op"`
	OutDir  string   `json:"out_dir"`
	Files   []File   `json:"files"`
	Skipped []string `json:"skipped,omitempty"`
}

// Progress is called after each file is written.
type Progress func(File)

// BaseName is the input file name without its extension.
func BaseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// siblingDir is <dir of input>/<base><suffix>.
func siblingDir(input, suffix string) string {
	return filepath.Join(filepath.Dir(input), BaseName(input)+suffix)
}

// DefaultChunkDir is where Chunks writes when no directory is given.
func DefaultChunkDir(input string) string { return siblingDir(input, "_split") }

// DefaultSectionDir is where Sections writes when no directory is given.
func DefaultSectionDir(input string) string { return siblingDir(input, "_by_sections") }

// DefaultSummaryPath is where Summary writes when no output is given.
func DefaultSummaryPath(input string) string {
	return filepath.Join(filepath.Dir(input), BaseName(input)+"_Summary.pdf")
}

// ChunkFileName is <base>_part<NN>_pages<start>-<end>.pdf.
func ChunkFileName(base string, i int, r pages.Range) string {
	return fmt.Sprintf("%s_part%02d_pages%d-%d.pdf", base, i+1, r.Start, r.End)
}

// SectionFileName is <NN>_<clean name>.pdf.
func SectionFileName(i int, name string) string {
	return fmt.Sprintf("%02d_%s.pdf", i+1, toc.CleanFilename(name))
}

func write(src Source, op Op, path string, pageNrs []int) (File, error) {
	n, size, err := src.WriteFile(path, pageNrs)
	if err != nil {
		return File{}, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	metrics.ObserveFile(string(op), n, size)
	log.Debug().Str("op", string(op)).Str("file", path).Int("pages", n).Int64("bytes", size).Msg("wrote output")
	return File{Path: path, PageCount: n, Bytes: size}, nil
}

func finish(op Op, start time.Time, err error) {
	metrics.ObserveOperation(string(op), err, time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("op", string(op)).Msg("operation failed")
		return
	}
	log.Info().Str("op", string(op)).Dur("took", time.Since(start)).Msg("operation complete")
}

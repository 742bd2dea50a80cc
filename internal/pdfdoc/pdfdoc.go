package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfslicer/internal/filetype"
	"github.com/local/pdfslicer/internal/pages"
)

// ErrNoPages is returned when a write would produce a PDF without pages.
var ErrNoPages = errors.New("no pages to write")

// Document is a source PDF read and validated once, then copied from many times.
type Document struct {
	path string
	size int64
	ctx  *model.Context
}

// Open sniffs path, then reads and validates it with pdfcpu.
func Open(path string) (*Document, error) {
	if err := filetype.New().EnsurePDF(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read %s: %w", path, err)
	}

	log.Debug().Str("file", path).Int("pages", ctx.PageCount).Int64("bytes", st.Size()).Msg("opened pdf")
	return &Document{path: path, size: st.Size(), ctx: ctx}, nil
}

func (d *Document) Path() string   { return d.path }
func (d *Document) Size() int64    { return d.size }
func (d *Document) PageCount() int { return d.ctx.PageCount }

// Named returns a copy of d that reports name as its path. Output names and default
// output directories are derived from the path, so a downloaded input can keep the
// name it had remotely.
func (d *Document) Named(name string) *Document {
	c := *d
	c.path = name
	return &c
}

// Write copies pages, in the given order, into a new PDF on w and returns how many pages
// were written. Pages outside the document are dropped.
func (d *Document) Write(w io.Writer, pageNrs []int) (int, error) {
	keep := pages.Within(pageNrs, d.PageCount())
	if len(keep) == 0 {
		return 0, ErrNoPages
	}
	out, err := pdfcpu.ExtractPages(d.ctx, keep, false)
	if err != nil {
		return 0, fmt.Errorf("extract pages %v: %w", pages.Selection(keep), err)
	}
	if err := api.WriteContext(out, w); err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return len(keep), nil
}

// WriteFile is Write to a file at path, creating its directory. It returns the page
// count and the size of the written file.
func (d *Document) WriteFile(path string, pageNrs []int) (int, int64, error) {
	var buf bytes.Buffer
	n, err := d.Write(&buf, pageNrs)
	if err != nil {
		return 0, 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, 0, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, 0, fmt.Errorf("write %s: %w", path, err)
	}
	return n, int64(buf.Len()), nil
}

// PageCount returns the number of pages in the PDF at path without keeping it open.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

package pdfdoc_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/local/pdfslicer/internal/filetype"
	"github.com/local/pdfslicer/internal/pdfdoc"
	"github.com/local/pdfslicer/internal/pdftest"
)

func TestOpenAndWrite(t *testing.T) {
	dir := t.TempDir()
	src := pdftest.WriteFile(t, dir, "book.pdf", 12)

	doc, err := pdfdoc.Open(src)
	gt.NoError(t, err)
	if doc == nil {
		t.FailNow()
	}
	gt.Equal(t, doc.PageCount(), 12)
	gt.Equal(t, doc.Path(), src)
	gt.True(t, doc.Size() > 0)

	out := filepath.Join(dir, "out", "part.pdf")
	n, size, err := doc.WriteFile(out, []int{2, 3, 4, 11})
	gt.NoError(t, err)
	gt.Equal(t, n, 4)

	st, err := os.Stat(out)
	gt.NoError(t, err)
	gt.Equal(t, st.Size(), size)

	count, err := pdfdoc.PageCount(out)
	gt.NoError(t, err)
	gt.Equal(t, count, 4)
}

func TestWriteDropsPagesOutsideDocument(t *testing.T) {
	dir := t.TempDir()
	doc, err := pdfdoc.Open(pdftest.WriteFile(t, dir, "book.pdf", 5))
	gt.NoError(t, err)
	if doc == nil {
		t.FailNow()
	}

	var buf bytes.Buffer
	n, err := doc.Write(&buf, []int{0, 4, 5, 6, 40})
	gt.NoError(t, err)
	gt.Equal(t, n, 2)
	gt.True(t, buf.Len() > 0)

	_, err = doc.Write(&buf, []int{6, 7})
	gt.True(t, errors.Is(err, pdfdoc.ErrNoPages))
}

func TestOpenRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.pdf")
	gt.NoError(t, os.WriteFile(p, []byte("plain text, not a pdf\n"), 0o644))

	_, err := pdfdoc.Open(p)
	gt.True(t, errors.Is(err, filetype.ErrNotPDF))
}

func TestNamed(t *testing.T) {
	dir := t.TempDir()
	doc, err := pdfdoc.Open(pdftest.WriteFile(t, dir, "pdfslicer-123.pdf", 3))
	gt.NoError(t, err)

	named := doc.Named("Guide.pdf")
	gt.Equal(t, named.Path(), "Guide.pdf")
	gt.Equal(t, named.PageCount(), 3)
	gt.True(t, doc.Path() != named.Path())

	n, _, err := named.WriteFile(filepath.Join(dir, "one.pdf"), []int{1})
	gt.NoError(t, err)
	gt.Equal(t, n, 1)
}

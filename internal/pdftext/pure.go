package pdftext

import (
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
)

// pureOpener implements Opener with github.com/ledongthuc/pdf. No cgo, weaker layout.
type pureOpener struct{}

func (pureOpener) Open(path string) (Doc, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	return &pureDoc{f: f, r: r}, nil
}

type pureDoc struct {
	f *os.File
	r *pdflib.Reader
}

func (d *pureDoc) NumPage() int { return d.r.NumPage() }

func (d *pureDoc) Page(i int) (Page, error) {
	// ledongthuc/pdf pages are 1-based
	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", i+1)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return nil, err
	}
	return &textPage{text: text}, nil
}

func (d *pureDoc) Close() error { return d.f.Close() }

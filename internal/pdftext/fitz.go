package pdftext

import (
	fitz "github.com/gen2brain/go-fitz"
)

// fitzOpener implements Opener using github.com/gen2brain/go-fitz (MuPDF).
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Doc, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return fitzDoc{doc}, nil
}

type fitzDoc struct{ *fitz.Document }

func (d fitzDoc) Page(i int) (Page, error) {
	text, err := d.Document.Text(i)
	if err != nil {
		return nil, err
	}
	return &textPage{text: text}, nil
}

// textPage holds text already pulled out by a backend.
type textPage struct {
	text string
}

func (p *textPage) Text() (string, error) { return p.text, nil }
func (p *textPage) Close() {}

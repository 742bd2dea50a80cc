package pdftext

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Backend names accepted by OpenerFor.
const (
	BackendFitz = "fitz"
	BackendPure = "pure"
)

// OpenerFor returns the text backend registered under name. Empty means fitz.
func OpenerFor(name string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendFitz, "mupdf":
		return fitzOpener{}, nil
	case BackendPure, "ledongthuc":
		return pureOpener{}, nil
	}
	return nil, fmt.Errorf("unknown text backend %q (want %s or %s)", name, BackendFitz, BackendPure)
}

// ExtractPages concatenates the text of the given 1-indexed pages. Pages past the end of
// the document are skipped; a page that fails to extract is logged and skipped.
func ExtractPages(o Opener, path string, pages []int) (string, error) {
	if o == nil {
		o = defaultOpener
	}
	d, err := o.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer d.Close()

	total := d.NumPage()
	var b strings.Builder
	for _, p := range pages {
		if p < 1 || p > total {
			log.Debug().Int("page", p).Int("total", total).Msg("toc page outside document, skipped")
			continue
		}
		pg, err := d.Page(p - 1)
		if err != nil {
			log.Warn().Err(err).Int("page", p).Msg("failed to read page")
			continue
		}
		text, err := pg.Text()
		pg.Close()
		if err != nil {
			log.Warn().Err(err).Int("page", p).Msg("failed to extract page text")
			continue
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

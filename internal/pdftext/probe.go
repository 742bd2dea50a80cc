package pdftext

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"time"
)

// PageProbe captures the result of probing a single PDF page.
type PageProbe struct {
	Page      int    `json:"page"`
	CharCount int    `json:"char_count"`
	Err       string `json:"err,omitempty"`
}

// Diagnostics describes a text-extractability check.
type Diagnostics struct {
	FilePath           string      `json:"file_path"`
	TotalPages         int         `json:"total_pages"`
	SampledPages       []int       `json:"sampled_pages"`
	TotalCharsInSample int         `json:"total_chars_in_sample"`
	Threshold          int         `json:"threshold"`
	Probes             []PageProbe `json:"probes"`
	HasExtractableText bool        `json:"has_extractable_text"`
	DurationMs         int64       `json:"duration_ms"`
}

// DefaultThreshold is used when a non-positive threshold is passed in.
const DefaultThreshold = 300

var whitespaceRegex = regexp.MustCompile(`\s+`)

func stripWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, "")
}

// Doc abstracts a PDF document for text extraction. Page indices are 0-based.
type Doc interface {
	NumPage() int
	Page(i int) (Page, error)
	Close() error
}

// Page abstracts a single PDF page for text extraction.
type Page interface {
	Text() (string, error)
	Close()
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

var defaultOpener Opener = fitzOpener{}

// Probe counts non-whitespace characters on the given 1-indexed pages and reports whether
// they reach threshold. A scanned table of contents comes back with HasExtractableText
// false. When pages is nil a spread of up to five pages is sampled.
func Probe(o Opener, path string, pages []int, threshold int) (*Diagnostics, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if o == nil {
		o = defaultOpener
	}

	start := time.Now()
	d, err := o.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer d.Close()

	total := d.NumPage()
	diag := &Diagnostics{FilePath: path, TotalPages: total, Threshold: threshold, SampledPages: []int{}}
	if total <= 0 {
		diag.DurationMs = time.Since(start).Milliseconds()
		return diag, nil
	}

	if pages != nil {
		diag.SampledPages = normalizeAndClampPages(pages, total)
	} else {
		diag.SampledPages = sampleIndices(total)
	}

	for _, p := range diag.SampledPages {
		probe := PageProbe{Page: p}
		pg, perr := d.Page(p - 1)
		if perr != nil {
			probe.Err = perr.Error()
			diag.Probes = append(diag.Probes, probe)
			continue
		}
		text, terr := pg.Text()
		pg.Close()
		if terr != nil {
			probe.Err = terr.Error()
			diag.Probes = append(diag.Probes, probe)
			continue
		}

		probe.CharCount = len([]rune(stripWhitespace(text)))
		diag.TotalCharsInSample += probe.CharCount
		diag.Probes = append(diag.Probes, probe)

		if diag.TotalCharsInSample >= threshold {
			break
		}
	}

	diag.HasExtractableText = diag.TotalCharsInSample >= threshold
	diag.DurationMs = time.Since(start).Milliseconds()
	return diag, nil
}

// sampleIndices picks 1-indexed pages: all of them up to 5, otherwise first, middle,
// last and two random others.
func sampleIndices(total int) []int {
	if total <= 5 {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i + 1
		}
		return idx
	}

	base := map[int]struct{}{1: {}, total/2 + 1: {}, total: {}}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for len(base) < 5 {
		base[rnd.Intn(total)+1] = struct{}{}
	}

	out := make([]int, 0, 5)
	for i := range base {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// normalizeAndClampPages ensures pages are unique, in [1,total], and sorted.
func normalizeAndClampPages(pages []int, total int) []int {
	m := make(map[int]struct{})
	for _, p := range pages {
		if p < 1 || p > total {
			continue
		}
		m[p] = struct{}{}
	}
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

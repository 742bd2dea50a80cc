package toc

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/local/pdfslicer/internal/pages"
)

// ErrInvalidPlan is wrapped by every Validate failure.
var ErrInvalidPlan = errors.New("invalid toc plan")

// PreambleName labels the always-kept cover and contents pages in keep details.
const PreambleName = "Cover & TOC"

// Topic is one table-of-contents entry with its page span and whether the summary keeps it.
type Topic struct {
	Title string `yaml:"title"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
	Keep  bool   `yaml:"keep"`
}

// Range returns the topic's page span.
func (t Topic) Range() pages.Range { return pages.Range{Start: t.Start, End: t.End} }

// Section is a chapter-level entry. Start is the page the section split cuts at.
type Section struct {
	Name   string  `yaml:"name"`
	Start  int     `yaml:"start"`
	Topics []Topic `yaml:"topics"`
}

// Plan is a hand-authored table of contents for one document.
type Plan struct {
	Title    string      `yaml:"title"`
	Preamble pages.Range `yaml:"preamble"` // zero value means no preamble
	Sections []Section   `yaml:"sections"`
}

// Detail lists the kept pages of one section, for the plan report.
type Detail struct {
	Name  string
	Pages []int
}

// Load reads and validates a YAML plan file.
func Load(path string) (Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// LoadOrDefault loads path, or returns the built-in guidebook plan when path is empty.
func LoadOrDefault(path string) (Plan, error) {
	if path == "" {
		return Guidebook(), nil
	}
	return Load(path)
}

// Validate checks page numbers are 1-indexed, spans are ordered and sections ascend.
func (p Plan) Validate() error {
	if len(p.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidPlan)
	}
	if !p.Preamble.IsZero() && (p.Preamble.Start < 1 || p.Preamble.End < p.Preamble.Start) {
		return fmt.Errorf("%w: preamble spans %d-%d", ErrInvalidPlan, p.Preamble.Start, p.Preamble.End)
	}
	prev := 0
	for _, s := range p.Sections {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: section without a name", ErrInvalidPlan)
		}
		if s.Start < 1 {
			return fmt.Errorf("%w: section %q starts at %d", ErrInvalidPlan, s.Name, s.Start)
		}
		if s.Start <= prev {
			return fmt.Errorf("%w: section %q starts at %d, not after %d", ErrInvalidPlan, s.Name, s.Start, prev)
		}
		prev = s.Start
		for _, t := range s.Topics {
			if t.Start < 1 || t.End < t.Start {
				return fmt.Errorf("%w: topic %q in %q has span %d-%d", ErrInvalidPlan, t.Title, s.Name, t.Start, t.End)
			}
		}
	}
	return nil
}

// KeepPages flattens the plan into the sorted unique pages the summary keeps, plus a
// per-section breakdown. A set preamble is always kept; sections without kept topics are
// left out of the details.
func (p Plan) KeepPages() ([]int, []Detail) {
	all := pages.NewSet()
	var details []Detail

	if !p.Preamble.IsZero() && p.Preamble.Len() > 0 {
		all.AddRange(p.Preamble)
		details = append(details, Detail{Name: PreambleName, Pages: p.Preamble.Pages()})
	}

	for _, s := range p.Sections {
		sec := pages.NewSet()
		for _, t := range s.Topics {
			if !t.Keep {
				continue
			}
			sec.AddRange(t.Range())
			all.AddRange(t.Range())
		}
		if sec.Len() > 0 {
			details = append(details, Detail{Name: s.Name, Pages: sec.Sorted()})
		}
	}
	return all.Sorted(), details
}

// SectionStarts returns the chapter names and their first pages, in order.
func (p Plan) SectionStarts() ([]string, []int) {
	names := make([]string, len(p.Sections))
	starts := make([]int, len(p.Sections))
	for i, s := range p.Sections {
		names[i] = s.Name
		starts[i] = s.Start
	}
	return names, starts
}

var (
	badFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	spaceRun         = regexp.MustCompile(`\s+`)
)

// maxFilenameLen counts characters, not bytes.
const maxFilenameLen = 100

// CleanFilename makes a section title safe to use as a file name.
func CleanFilename(name string) string {
	name = badFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimRight(name, ".")
	name = spaceRun.ReplaceAllString(name, " ")
	if r := []rune(name); len(r) > maxFilenameLen {
		name = string(r[:maxFilenameLen])
	}
	return strings.TrimSpace(name)
}

package pages

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrBadSize is returned when a chunk size is not positive.
var ErrBadSize = errors.New("pages per split must be positive")

// Range is an inclusive, 1-indexed page range.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of pages in r, 0 for an empty range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// IsZero reports whether r is the unset zero value.
func (r Range) IsZero() bool { return r == Range{} }

// Pages expands r into its page numbers.
func (r Range) Pages() []int {
	out := make([]int, 0, r.Len())
	for p := r.Start; p <= r.End; p++ {
		out = append(out, p)
	}
	return out
}

func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Clamp restricts r to [1, total]. The bool is false when nothing is left.
func (r Range) Clamp(total int) (Range, bool) {
	if r.Start < 1 {
		r.Start = 1
	}
	if r.End > total {
		r.End = total
	}
	return r, r.Len() > 0
}

// Chunks splits total pages into consecutive ranges of size pages; the last one may be shorter.
func Chunks(total, size int) ([]Range, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if total <= 0 {
		return nil, nil
	}
	n := (total + size - 1) / size
	out := make([]Range, 0, n)
	for i := 0; i < n; i++ {
		start := i*size + 1
		end := (i + 1) * size
		if end > total {
			end = total
		}
		out = append(out, Range{Start: start, End: end})
	}
	return out, nil
}

// Sections turns a list of section start pages into ranges. Each section ends one page
// before the next one starts; the last runs to total. Ranges are clamped to the document,
// so a section that starts past the end comes back with Len() == 0.
func Sections(starts []int, total int) []Range {
	out := make([]Range, 0, len(starts))
	for i, s := range starts {
		end := total
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}
		r := Range{Start: s, End: end}
		if c, ok := r.Clamp(total); ok {
			r = c
		} else {
			r = Range{Start: s, End: s - 1}
		}
		out = append(out, r)
	}
	return out
}

// Set is a set of page numbers.
type Set map[int]struct{}

// NewSet builds a set from pages.
func NewSet(pages ...int) Set {
	s := Set{}
	for _, p := range pages {
		s.Add(p)
	}
	return s
}

func (s Set) Add(p int) { s[p] = struct{}{} }

func (s Set) AddRange(r Range) {
	for p := r.Start; p <= r.End; p++ {
		s[p] = struct{}{}
	}
}

func (s Set) Has(p int) bool {
	_, ok := s[p]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the pages in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Within returns the sorted pages that exist in a document of total pages.
func (s Set) Within(total int) []int {
	return Within(s.Sorted(), total)
}

// Within filters pages down to [1, total], keeping order.
func Within(pages []int, total int) []int {
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if p >= 1 && p <= total {
			out = append(out, p)
		}
	}
	return out
}

// Compact collapses a sorted page list into maximal contiguous ranges.
func Compact(pages []int) []Range {
	var out []Range
	for _, p := range pages {
		if n := len(out); n > 0 && out[n-1].End+1 == p {
			out[n-1].End = p
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == p {
			continue
		}
		out = append(out, Range{Start: p, End: p})
	}
	return out
}

// Selection renders pages as pdfcpu page selection strings ("1-6", "9").
func Selection(pages []int) []string {
	rs := Compact(pages)
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return out
}

// Parse reads a page spec such as "4,5,6" or "1-6, 9". Whitespace is ignored,
// the result is sorted and unique.
func Parse(spec string) ([]int, error) {
	s := NewSet()
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err := parsePage(lo)
			if err != nil {
				return nil, err
			}
			b, err := parsePage(hi)
			if err != nil {
				return nil, err
			}
			if b < a {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			s.AddRange(Range{Start: a, End: b})
			continue
		}
		p, err := parsePage(part)
		if err != nil {
			return nil, err
		}
		s.Add(p)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("empty page spec %q", spec)
	}
	return s.Sorted(), nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q: %w", s, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers start at 1, got %d", n)
	}
	return n, nil
}

package toc_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"

	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/toc"
)

func TestGuidebookKeepPages(t *testing.T) {
	plan := toc.Guidebook()
	gt.NoError(t, plan.Validate())

	kept, details := plan.KeepPages()
	gt.Equal(t, len(kept), 93)
	gt.Equal(t, kept[0], 1)
	gt.Equal(t, kept[len(kept)-1], 307)

	names := make([]string, len(details))
	for i, d := range details {
		names[i] = d.Name
	}
	gt.Equal(t, names, []string{
		toc.PreambleName, "LLMs", "Prompt Engineering", "Fine-tuning", "RAG",
		"Context Engineering", "AI Agents", "MCP", "LLM Optimization",
	})
	gt.Equal(t, details[0].Pages, []int{1, 2, 3, 4, 5, 6})

	set := pages.NewSet(kept...)
	t.Run("skipped topics stay out", func(t *testing.T) {
		gt.False(t, set.Has(18))
		gt.False(t, set.Has(384))
	})
	t.Run("kept range wins over overlapping skip", func(t *testing.T) {
		gt.True(t, set.Has(203))
		gt.True(t, set.Has(204))
	})
}

func TestKeepPagesDeduplicates(t *testing.T) {
	plan := toc.Plan{
		Preamble: pages.Range{Start: 1, End: 2},
		Sections: []toc.Section{
			{Name: "A", Start: 2, Topics: []toc.Topic{
				{Title: "x", Start: 2, End: 4, Keep: true},
				{Title: "y", Start: 3, End: 5, Keep: true},
			}},
			{Name: "B", Start: 6, Topics: []toc.Topic{{Title: "z", Start: 6, End: 7}}},
		},
	}
	kept, details := plan.KeepPages()
	gt.Equal(t, kept, []int{1, 2, 3, 4, 5})
	gt.Equal(t, len(details), 2)
	gt.Equal(t, details[1].Pages, []int{2, 3, 4, 5})
}

func TestSectionStarts(t *testing.T) {
	names, starts := toc.Guidebook().SectionStarts()
	gt.Equal(t, len(names), 11)
	gt.Equal(t, starts, []int{7, 50, 67, 106, 147, 177, 265, 305, 332, 359, 371})
	gt.Equal(t, names[10], "LLM Observability")
}

func TestValidate(t *testing.T) {
	cases := map[string]toc.Plan{
		"no sections":  {},
		"unnamed":      {Sections: []toc.Section{{Start: 1}}},
		"zero start":   {Sections: []toc.Section{{Name: "a", Start: 0}}},
		"out of order": {Sections: []toc.Section{{Name: "a", Start: 5}, {Name: "b", Start: 5}}},
		"bad topic": {Sections: []toc.Section{{Name: "a", Start: 1, Topics: []toc.Topic{
			{Title: "t", Start: 4, End: 3},
		}}}},
	}
	for name, plan := range cases {
		t.Run(name, func(t *testing.T) {
			gt.True(t, errors.Is(plan.Validate(), toc.ErrInvalidPlan))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	doc := `title: Short book
preamble: {start: 1, end: 2}
sections:
  - name: Intro
    start: 3
    topics:
      - {title: Why, start: 3, end: 4, keep: true}
      - {title: How, start: 5, end: 8, keep: false}
  - name: Outro
    start: 9
    topics:
      - {title: Bye, start: 9, end: 9, keep: true}
`
	gt.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	plan, err := toc.Load(path)
	gt.NoError(t, err)
	gt.Equal(t, plan.Title, "Short book")
	kept, _ := plan.KeepPages()
	gt.Equal(t, kept, []int{1, 2, 3, 4, 9})

	t.Run("invalid plan file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		gt.NoError(t, os.WriteFile(bad, []byte("sections: []\n"), 0o644))
		_, err := toc.Load(bad)
		gt.True(t, errors.Is(err, toc.ErrInvalidPlan))
	})

	t.Run("default plan", func(t *testing.T) {
		plan, err := toc.LoadOrDefault("")
		gt.NoError(t, err)
		gt.Equal(t, plan.Title, "AI Engineering Guidebook")
	})
}

func TestCleanFilename(t *testing.T) {
	gt.Equal(t, toc.CleanFilename("LLM Evaluation"), "LLM Evaluation")
	gt.Equal(t, toc.CleanFilename(`What: is/a "RAG"?...`), "What isa RAG")
	gt.Equal(t, toc.CleanFilename("  Context \t  Engineering  "), "Context Engineering")

	long := ""
	for i := 0; i < 30; i++ {
		long += "abcde"
	}
	gt.Equal(t, len(toc.CleanFilename(long)), 100)

	t.Run("multi-byte titles are cut on a character boundary", func(t *testing.T) {
		got := toc.CleanFilename(strings.Repeat("€", 120))
		gt.True(t, utf8.ValidString(got))
		gt.Equal(t, utf8.RuneCountInString(got), 100)
		gt.Equal(t, got, strings.Repeat("€", 100))
	})
}

func TestPlanWithoutPreamble(t *testing.T) {
	plan := toc.Plan{Sections: []toc.Section{
		{Name: "A", Start: 1, Topics: []toc.Topic{{Title: "x", Start: 1, End: 2, Keep: true}}},
	}}
	gt.NoError(t, plan.Validate())

	kept, details := plan.KeepPages()
	gt.Equal(t, kept, []int{1, 2})
	gt.Equal(t, len(details), 1)
	gt.Equal(t, details[0].Name, "A")

	t.Run("yaml file without preamble", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		doc := "sections:\n  - name: A\n    start: 1\n    topics:\n      - {title: x, start: 1, end: 2, keep: true}\n"
		gt.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		loaded, err := toc.Load(path)
		gt.NoError(t, err)
		kept, _ := loaded.KeepPages()
		gt.Equal(t, kept, []int{1, 2})
	})

	t.Run("set but reversed preamble is rejected", func(t *testing.T) {
		bad := plan
		bad.Preamble = pages.Range{Start: 3, End: 1}
		gt.True(t, errors.Is(bad.Validate(), toc.ErrInvalidPlan))
	})
}

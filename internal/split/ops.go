package split

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/toc"
)

// ChunkOptions configures Chunks.
type ChunkOptions struct {
	Size     int
	OutDir   string
	Progress Progress
}

// Chunks writes the document as consecutive files of Size pages each.
func Chunks(ctx context.Context, src Source, opts ChunkOptions) (res *Result, err error) {
	start := time.Now()
	defer func() { finish(OpChunks, start, err) }()

	if opts.Size == 0 {
		opts.Size = DefaultPagesPerSplit
	}
	ranges, err := pages.Chunks(src.PageCount(), opts.Size)
	if err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		opts.OutDir = DefaultChunkDir(src.Path())
	}
	log.Info().Int("total_pages", src.PageCount()).Int("pages_per_split", opts.Size).Int("files", len(ranges)).Msg("splitting into chunks")

	res = &Result{Op: OpChunks, OutDir: opts.OutDir}
	base := BaseName(src.Path())
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		f, err := write(src, OpChunks, filepath.Join(opts.OutDir, ChunkFileName(base, i, r)), r.Pages())
		if err != nil {
			return res, err
		}
		f.Range = r
		res.Files = append(res.Files, f)
		if opts.Progress != nil {
			opts.Progress(f)
		}
	}
	return res, nil
}

// SectionOptions configures Sections.
type SectionOptions struct {
	Plan     toc.Plan
	OutDir   string
	Progress Progress
}

// Sections writes one file per plan section. A section runs from its start page up to
// the page before the next section starts; the last runs to the end of the document.
// Sections that begin past the end of the document are reported in Result.Skipped.
func Sections(ctx context.Context, src Source, opts SectionOptions) (res *Result, err error) {
	start := time.Now()
	defer func() { finish(OpSections, start, err) }()

	if err := opts.Plan.Validate(); err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		opts.OutDir = DefaultSectionDir(src.Path())
	}
	names, starts := opts.Plan.SectionStarts()
	ranges := pages.Sections(starts, src.PageCount())
	log.Info().Int("total_pages", src.PageCount()).Int("sections", len(ranges)).Msg("splitting by sections")

	res = &Result{Op: OpSections, OutDir: opts.OutDir}
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if r.Len() == 0 {
			log.Warn().Str("section", names[i]).Int("start", starts[i]).Int("total_pages", src.PageCount()).Msg("section starts past the end of the document")
			res.Skipped = append(res.Skipped, names[i])
			continue
		}
		f, err := write(src, OpSections, filepath.Join(opts.OutDir, SectionFileName(i, names[i])), r.Pages())
		if err != nil {
			return res, err
		}
		f.Name = names[i]
		f.Range = r
		res.Files = append(res.Files, f)
		if opts.Progress != nil {
			opts.Progress(f)
		}
	}
	return res, nil
}

// SummaryOptions configures Summary.
type SummaryOptions struct {
	Plan     toc.Plan
	Output   string
	Progress Progress
}

// SizeReport compares the source and the summary.
type SizeReport struct {
	OriginalPages int   `json:"original_pages"`
	PlannedPages  int   `json:"planned_pages"`
	SummaryPages  int   `json:"summary_pages"`
	OriginalBytes int64 `json:"original_bytes"`
	SummaryBytes  int64 `json:"summary_bytes"`
}

// PageReduction is the share of pages removed, in percent.
func (r SizeReport) PageReduction() float64 {
	return reduction(float64(r.SummaryPages), float64(r.OriginalPages))
}

// SizeReduction is the share of bytes removed, in percent.
func (r SizeReport) SizeReduction() float64 {
	return reduction(float64(r.SummaryBytes), float64(r.OriginalBytes))
}

func reduction(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return (1 - part/whole) * 100
}

// Summary writes the plan's kept pages, preamble included, into a single file.
func Summary(ctx context.Context, src Source, opts SummaryOptions) (res *Result, rep *SizeReport, err error) {
	start := time.Now()
	defer func() { finish(OpSummary, start, err) }()

	if err := opts.Plan.Validate(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if opts.Output == "" {
		opts.Output = DefaultSummaryPath(src.Path())
	}

	planned, _ := opts.Plan.KeepPages()
	keep := pages.Within(planned, src.PageCount())
	if len(keep) < len(planned) {
		log.Warn().Int("planned", len(planned)).Int("in_document", len(keep)).Msg("plan names pages beyond the end of the document")
	}

	f, err := write(src, OpSummary, opts.Output, keep)
	if err != nil {
		return nil, nil, err
	}
	f.Pages = keep
	if opts.Progress != nil {
		opts.Progress(f)
	}

	res = &Result{Op: OpSummary, OutDir: filepath.Dir(opts.Output), Files: []File{f}}
	rep = &SizeReport{
		OriginalPages: src.PageCount(),
		PlannedPages:  len(planned),
		SummaryPages:  f.PageCount,
		OriginalBytes: src.Size(),
		SummaryBytes:  f.Bytes,
	}
	return res, rep, nil
}

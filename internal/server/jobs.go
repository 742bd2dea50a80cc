package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfslicer/internal/metrics"
	"github.com/local/pdfslicer/internal/pdfdoc"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/storage"
	"github.com/local/pdfslicer/internal/store"
)

func (s *Server) run(ctx context.Context, id string, req JobRequest, start time.Time) {
	logger := log.With().Str("job_id", id).Str("op", string(req.Op)).Logger()
	metrics.JobStarted()

	md := map[string]interface{}{"op": string(req.Op), "input": req.Input}
	s.setStatus(ctx, id, store.Status{Status: store.StateProcessing, Progress: 10, Message: "processing", Start: &start, Metadata: md})

	outputs, err := s.execute(ctx, id, req, md)
	metrics.JobFinished(err)

	end := time.Now()
	st := store.Status{Start: &start, End: &end, Metadata: md}
	if err != nil {
		st.Status = store.StateFailed
		st.Message = err.Error()
		logger.Error().Err(err).Dur("elapsed", end.Sub(start)).Msg("job failed")
	} else {
		md["outputs"] = outputs
		st.Status = store.StateSuccess
		st.Progress = 100
		st.Message = fmt.Sprintf("%d files written", len(outputs))
		logger.Info().Int("files", len(outputs)).Dur("elapsed", end.Sub(start)).Msg("job complete")
	}
	s.setStatus(ctx, id, st)

	if n := storage.CleanupTemps(s.tempMaxAge); n > 0 {
		logger.Debug().Int("removed", n).Msg("removed stale temp files")
	}
}

func (s *Server) setStatus(ctx context.Context, id string, st store.Status) {
	if err := s.status.Set(ctx, id, st); err != nil {
		log.Warn().Err(err).Str("job_id", id).Str("status", st.Status).Msg("failed to update job status")
	}
}

// outputTarget picks the local directory (or summary file) a job writes to.
// Remote and empty outputs are staged under the work dir.
func (s *Server) outputTarget(id string, req JobRequest) (dir, file string) {
	out := req.Output
	if out == "" || storage.IsS3(out) {
		dir = filepath.Join(s.workDir, id)
	} else {
		dir = out
	}
	if req.Op == split.OpSummary {
		if out != "" && !storage.IsS3(out) && strings.EqualFold(filepath.Ext(out), ".pdf") {
			return filepath.Dir(out), out
		}
		file = filepath.Join(dir, split.BaseName(storage.Name(req.Input))+"_Summary.pdf")
	}
	return dir, file
}

func (s *Server) execute(ctx context.Context, id string, req JobRequest, md map[string]interface{}) ([]string, error) {
	local, cleanup, err := storage.Resolve(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}
	defer cleanup()

	doc, err := pdfdoc.Open(local)
	if err != nil {
		return nil, err
	}
	md["total_pages"] = doc.PageCount()
	src := doc.Named(storage.Name(req.Input))

	sink, err := storage.SinkFor(ctx, req.Output)
	if err != nil {
		return nil, err
	}

	dir, file := s.outputTarget(id, req)
	var res *split.Result
	switch req.Op {
	case split.OpChunks:
		size := req.PagesPerSplit
		if size == 0 {
			size = s.pagesPerSplit
		}
		res, err = split.Chunks(ctx, src, split.ChunkOptions{Size: size, OutDir: dir})
	case split.OpSections:
		res, err = split.Sections(ctx, src, split.SectionOptions{Plan: s.plan, OutDir: dir})
	case split.OpSummary:
		var rep *split.SizeReport
		res, rep, err = split.Summary(ctx, src, split.SummaryOptions{Plan: s.plan, Output: file})
		if rep != nil {
			md["size_report"] = rep
		}
	default:
		err = fmt.Errorf("unknown op %q", req.Op)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Skipped) > 0 {
		md["skipped"] = res.Skipped
	}

	outputs := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		ref, err := sink.Put(ctx, f.Path, f.PageCount)
		if err != nil {
			return outputs, fmt.Errorf("store %s: %w", filepath.Base(f.Path), err)
		}
		outputs = append(outputs, ref)
	}
	return outputs, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/local/pdfslicer/internal/config"
	"github.com/local/pdfslicer/internal/logger"
	"github.com/local/pdfslicer/internal/metrics"
	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/pdfdoc"
	"github.com/local/pdfslicer/internal/pdftext"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/storage"
)

// app carries configuration into the command actions. Reports go to out,
// logs go to stderr.
type app struct {
	cfg config.Config
	out io.Writer
}

func newApp(cfg config.Config, out io.Writer) *cli.Command {
	a := &app{cfg: cfg, out: out}
	return &cli.Command{
		Name:  "pdfslicer",
		Usage: "split a PDF into chunks or chapters, or cut an executive summary from it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Usage:   "debug|info|warn|error (default warn, info for serve)",
			},
			&cli.StringFlag{
				Name:  "metrics-textfile",
				Value: cfg.MetricsTextfile,
				Usage: "write Prometheus metrics to this file on exit",
			},
		},
		After: a.after,
		Commands: []*cli.Command{
			a.chunksCommand(),
			a.sectionsCommand(),
			a.summaryCommand(),
			a.planCommand(),
			a.tocCommand(),
			a.serveCommand(),
		},
	}
}

func (a *app) setup(cmd *cli.Command, defaultLevel string) {
	level := cmd.String("log-level")
	if level == "" {
		level = defaultLevel
	}
	lc, ax := a.cfg.Logging, a.cfg.Axiom
	_ = logger.Init(logger.Options{
		Level:        level,
		Pretty:       lc.Pretty,
		File:         lc.File,
		MaxSizeMB:    lc.MaxSizeMB,
		MaxBackups:   lc.MaxBackups,
		MaxAgeDays:   lc.MaxAgeDays,
		Compress:     lc.Compress,
		Console:      os.Stderr,
		SendToAxiom:  ax.Send && ax.APIKey != "",
		AxiomAPIKey:  ax.APIKey,
		AxiomOrgID:   ax.OrgID,
		AxiomDataset: ax.Dataset,
		AxiomFlush:   ax.FlushInterval,
	})
	metrics.Init()
}

func (a *app) after(ctx context.Context, cmd *cli.Command) error {
	defer logger.Close()
	if p := cmd.String("metrics-textfile"); p != "" {
		if err := metrics.WriteTextfile(p); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	return nil
}

func (a *app) input(cmd *cli.Command) string {
	if in := cmd.Args().First(); in != "" {
		return in
	}
	return a.cfg.Split.Input
}

// openInput resolves ref and opens it. A downloaded input keeps its remote
// name, so its outputs land in the working directory.
func (a *app) openInput(ctx context.Context, ref string) (*pdfdoc.Document, string, func(), error) {
	local, cleanup, err := storage.Resolve(ctx, ref)
	if err != nil {
		return nil, "", cleanup, fmt.Errorf("resolve %s: %w", ref, err)
	}
	doc, err := pdfdoc.Open(local)
	if err != nil {
		cleanup()
		return nil, "", func() {}, err
	}
	if storage.IsRemote(ref) {
		doc = doc.Named(storage.Name(ref))
	}
	return doc, local, cleanup, nil
}

// localTarget is where an operation writes before outputs go to the sink.
// Empty means the operation's default next to the input.
func localTarget(out string) string {
	if storage.IsS3(out) {
		return ""
	}
	return out
}

// publish hands every written file to sink and prints where remote copies went.
func (a *app) publish(ctx context.Context, sink storage.Sink, res *split.Result) error {
	if _, ok := sink.(storage.LocalSink); ok {
		return nil
	}
	for _, f := range res.Files {
		ref, err := sink.Put(ctx, f.Path, f.PageCount)
		if err != nil {
			return fmt.Errorf("upload %s: %w", f.Path, err)
		}
		fmt.Fprintf(a.out, "Uploaded: %s\n", ref)
	}
	return nil
}

// tocText extracts the table-of-contents pages of the file at local.
func (a *app) tocText(local, spec, backend string) (string, error) {
	nums, err := pages.Parse(spec)
	if err != nil {
		return "", fmt.Errorf("toc pages: %w", err)
	}
	opener, err := pdftext.OpenerFor(backend)
	if err != nil {
		return "", err
	}
	if diag, err := pdftext.Probe(opener, local, nums, 0); err == nil && !diag.HasExtractableText {
		log.Warn().Str("file", local).Int("chars", diag.TotalCharsInSample).Ints("pages", nums).
			Msg("toc pages carry little extractable text, the file may be scanned")
	}
	return pdftext.ExtractPages(opener, local, nums)
}

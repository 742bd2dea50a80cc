package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/local/pdfslicer/internal/pdfdoc"
	"github.com/local/pdfslicer/internal/report"
	"github.com/local/pdfslicer/internal/server"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/statuscheck"
	"github.com/local/pdfslicer/internal/storage"
	"github.com/local/pdfslicer/internal/store"
	"github.com/local/pdfslicer/internal/toc"
)

func (a *app) planFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "plan",
		Value: a.cfg.Split.PlanFile,
		Usage: "YAML section/topic table; the built-in guidebook table when empty",
	}
}

func (a *app) tocFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "toc-pages", Value: a.cfg.Split.TOCPages, Usage: "1-based table-of-contents pages"},
		&cli.StringFlag{Name: "backend", Value: a.cfg.Split.TextBackend, Usage: "text extraction backend: fitz|pure"},
	}
}

func (a *app) chunksCommand() *cli.Command {
	return &cli.Command{
		Name:      "chunks",
		Usage:     "split into consecutive files of N pages",
		ArgsUsage: "[input]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "pages-per-split", Aliases: []string{"n"}, Value: a.cfg.Split.PagesPerSplit},
			&cli.StringFlag{Name: "out", Value: a.cfg.Split.OutputDir, Usage: "output directory or s3://bucket/prefix"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.setup(cmd, "warn")
			doc, _, cleanup, err := a.openInput(ctx, a.input(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.String("out")
			sink, err := storage.SinkFor(ctx, out)
			if err != nil {
				return err
			}
			size := cmd.Int("pages-per-split")
			fmt.Fprintf(a.out, "Total pages: %d\n", doc.PageCount())
			fmt.Fprintf(a.out, "Splitting into chunks of %d pages...\n", size)

			res, err := split.Chunks(ctx, doc, split.ChunkOptions{
				Size:     size,
				OutDir:   localTarget(out),
				Progress: report.File(a.out),
			})
			if err != nil {
				return err
			}
			report.Done(a.out, res)
			return a.publish(ctx, sink, res)
		},
	}
}

func (a *app) sectionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "sections",
		Usage:     "split into one file per chapter of the section table",
		ArgsUsage: "[input]",
		Flags: append(a.tocFlags(),
			a.planFlag(),
			&cli.StringFlag{Name: "out", Value: a.cfg.Split.OutputDir, Usage: "output directory or s3://bucket/prefix"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.setup(cmd, "warn")
			plan, err := toc.LoadOrDefault(cmd.String("plan"))
			if err != nil {
				return err
			}
			doc, local, cleanup, err := a.openInput(ctx, a.input(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			// the table is hand-authored; the extracted text is only logged for comparison
			if text, err := a.tocText(local, cmd.String("toc-pages"), cmd.String("backend")); err != nil {
				log.Warn().Err(err).Msg("could not read table of contents")
			} else {
				log.Debug().Int("chars", len(text)).Str("toc", text).Msg("table of contents")
			}

			names, starts := plan.SectionStarts()
			report.Sections(a.out, names, starts)

			out := cmd.String("out")
			sink, err := storage.SinkFor(ctx, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\nTotal pages in PDF: %d\n", doc.PageCount())
			fmt.Fprintf(a.out, "Creating %d section files...\n\n", len(names))

			res, err := split.Sections(ctx, doc, split.SectionOptions{
				Plan:     plan,
				OutDir:   localTarget(out),
				Progress: report.File(a.out),
			})
			if err != nil {
				return err
			}
			report.Done(a.out, res)
			return a.publish(ctx, sink, res)
		},
	}
}

func (a *app) summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "write the preamble and every kept topic into one executive summary",
		ArgsUsage: "[input]",
		Flags: []cli.Flag{
			a.planFlag(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "summary file, or s3://bucket/prefix to upload it"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.setup(cmd, "warn")
			plan, err := toc.LoadOrDefault(cmd.String("plan"))
			if err != nil {
				return err
			}
			doc, _, cleanup, err := a.openInput(ctx, a.input(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.String("output")
			sink, err := storage.SinkFor(ctx, out)
			if err != nil {
				return err
			}

			total := doc.PageCount()
			kept, details := plan.KeepPages()
			fmt.Fprintf(a.out, "Total pages in original document: %d\n", total)
			report.Plan(a.out, details, len(kept), total)
			report.Creating(a.out, len(kept), total)

			res, rep, err := split.Summary(ctx, doc, split.SummaryOptions{Plan: plan, Output: localTarget(out)})
			if err != nil {
				return err
			}
			report.Sizes(a.out, *rep)
			fmt.Fprintf(a.out, "\nSummary saved to: %s\n", res.Files[0].Path)
			return a.publish(ctx, sink, res)
		},
	}
}

func (a *app) planCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "print which pages the summary keeps without writing anything",
		ArgsUsage: "[input]",
		Flags:     []cli.Flag{a.planFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.setup(cmd, "warn")
			plan, err := toc.LoadOrDefault(cmd.String("plan"))
			if err != nil {
				return err
			}
			total := 0
			if in := a.input(cmd); !storage.IsRemote(in) {
				if n, err := pdfdoc.PageCount(in); err == nil {
					total = n
				} else {
					log.Debug().Err(err).Str("input", in).Msg("page count unavailable")
				}
			}
			kept, details := plan.KeepPages()
			report.Plan(a.out, details, len(kept), total)
			return nil
		},
	}
}

func (a *app) tocCommand() *cli.Command {
	return &cli.Command{
		Name:      "toc",
		Usage:     "print the text of the table-of-contents pages",
		ArgsUsage: "[input]",
		Flags:     a.tocFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.setup(cmd, "warn")
			local, cleanup, err := storage.Resolve(ctx, a.input(cmd))
			if err != nil {
				return err
			}
			defer cleanup()

			text, err := a.tocText(local, cmd.String("toc-pages"), cmd.String("backend"))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, text)
			return nil
		},
	}
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP job service",
		Flags: []cli.Flag{
			a.planFlag(),
			&cli.StringFlag{Name: "port", Value: a.cfg.Server.Port},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.setup(cmd, "info")
			sc := a.cfg.Server

			plan, err := toc.LoadOrDefault(cmd.String("plan"))
			if err != nil {
				return err
			}

			var status store.StatusStore = store.NewMemoryStatus()
			var pinger statuscheck.RedisPinger
			if sc.RedisURL != "" {
				rs, err := store.NewRedisStatus(sc.RedisURL, sc.JobTTL)
				if err != nil {
					return fmt.Errorf("init redis status store: %w", err)
				}
				defer rs.Close()
				status, pinger = rs, rs
			} else {
				log.Info().Msg("REDIS_URL not set, job status kept in memory")
			}

			srv := server.New(server.Options{
				Status: status,
				Checker: statuscheck.New(statuscheck.Options{
					Redis:       pinger,
					S3Bucket:    sc.S3Bucket,
					WorkDir:     sc.WorkDir,
					TextBackend: a.cfg.Split.TextBackend,
				}),
				Plan:          plan,
				Concurrency:   sc.Concurrency,
				PagesPerSplit: a.cfg.Split.PagesPerSplit,
				WorkDir:       sc.WorkDir,
				TempMaxAge:    sc.TempMaxAge,
			})

			port := cmd.String("port")
			hs := &http.Server{Addr: ":" + port, Handler: srv, ReadHeaderTimeout: 10 * time.Second}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info().Msgf("HTTP server listening on :%s", port)
				errc <- hs.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
			case <-ctx.Done():
			}

			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = hs.Shutdown(sctx)
			log.Info().Msg("waiting for running jobs")
			srv.Wait()
			log.Info().Msg("shutdown complete")
			return nil
		},
	}
}

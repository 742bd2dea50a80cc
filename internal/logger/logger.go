package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/axiomhq/axiom-go/axiom/ingest"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options defines logger initialization parameters.
type Options struct {
	Level   string
	Pretty  bool
	Service string // attached to forwarded events; "pdfslicer" when empty

	// Console receives the human or JSON stream; nil means stdout.
	Console io.Writer

	// File enables a rotating log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	SendToAxiom  bool
	AxiomAPIKey  string
	AxiomOrgID   string
	AxiomDataset string
	AxiomFlush   time.Duration
}

const defaultService = "pdfslicer"

var (
	global zerolog.Logger
	ax     *axiomSink
)

// Init replaces the global logger. Debug lines never leave the process: the
// Axiom sink only receives info and above.
func Init(opts Options) error {
	Close()

	var writers []io.Writer
	if opts.File != "" {
		fw, err := fileWriter(opts)
		if err != nil {
			return err
		}
		writers = append(writers, fw)
	}
	writers = append(writers, consoleWriter(opts))

	if opts.SendToAxiom && opts.AxiomAPIKey != "" {
		service := opts.Service
		if service == "" {
			service = defaultService
		}
		sink, err := newAxiomSink(opts.AxiomAPIKey, opts.AxiomOrgID, opts.AxiomDataset, service, opts.AxiomFlush)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Axiom disabled: %v\n", err)
		} else {
			ax = sink
			writers = append(writers, sink)
		}
	}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	global = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	log.Logger = global
	return nil
}

func fileWriter(opts Options) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}, nil
}

func consoleWriter(opts Options) io.Writer {
	out := opts.Console
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

// Close flushes and stops the Axiom sink, if any.
func Close() {
	if ax != nil {
		ax.Close()
		ax = nil
	}
}

// Get returns the global logger.
func Get() *zerolog.Logger { return &global }

const (
	axiomBatch  = 200
	axiomBuffer = 1000
)

// axiomSink batches log events to an Axiom dataset. It implements
// zerolog.LevelWriter so filtering happens before the line is decoded.
type axiomSink struct {
	client   *axiom.Client
	dataset  string
	service  string
	minLevel zerolog.Level
	ch       chan axiom.Event
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func newAxiomSink(token, orgID, dataset, service string, flushEvery time.Duration) (*axiomSink, error) {
	if dataset == "" {
		dataset = "dev_pdfslicer"
	}
	opts := []axiom.Option{axiom.SetToken(token)}
	if orgID != "" {
		opts = append(opts, axiom.SetOrganizationID(orgID))
	}
	c, err := axiom.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	if flushEvery <= 0 {
		flushEvery = 10 * time.Second
	}
	s := &axiomSink{
		client:   c,
		dataset:  dataset,
		service:  service,
		minLevel: zerolog.InfoLevel,
		ch:       make(chan axiom.Event, axiomBuffer),
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop(flushEvery)
	return s, nil
}

// Write treats unlevelled lines as info.
func (s *axiomSink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.InfoLevel, p)
}

func (s *axiomSink) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < s.minLevel || l == zerolog.NoLevel {
		return len(p), nil
	}
	ev := map[string]interface{}{}
	if err := json.Unmarshal(p, &ev); err != nil {
		ev = map[string]interface{}{"message": string(p), "level": l.String()}
	}
	ev["service"] = s.service
	if _, ok := ev[ingest.TimestampField]; !ok {
		ev[ingest.TimestampField] = time.Now()
	}
	select {
	case s.ch <- axiom.Event(ev):
	default:
		// buffer full, drop
	}
	return len(p), nil
}

func (s *axiomSink) loop(flushEvery time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	batch := make([]axiom.Event, 0, axiomBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		_, _ = s.client.IngestEvents(ctx, s.dataset, batch)
		cancel()
		batch = batch[:0]
	}
	for {
		select {
		case <-s.done:
			// pick up whatever was queued before Close
			for {
				select {
				case ev := <-s.ch:
					batch = append(batch, ev)
				default:
					flush()
					return
				}
			}
		case <-ticker.C:
			flush()
		case ev := <-s.ch:
			batch = append(batch, ev)
			if len(batch) >= axiomBatch {
				flush()
			}
		}
	}
}

// Close flushes queued events and waits for the sender to stop.
func (s *axiomSink) Close() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/m-mizutani/gt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesJSONToConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "pdfslicer.log")

	gt.NoError(t, Init(Options{Level: "warn", File: file, Console: &buf, MaxSizeMB: 1}))
	defer Close()

	log.Info().Msg("hidden")
	log.Warn().Str("op", "chunks").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	gt.Equal(t, len(lines), 1)

	var ev map[string]any
	gt.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	gt.Equal(t, ev["level"], any("warn"))
	gt.Equal(t, ev["op"], any("chunks"))
	gt.Equal(t, ev["message"], any("visible"))

	b, err := os.ReadFile(file)
	gt.NoError(t, err)
	gt.True(t, strings.Contains(string(b), "visible"))
	gt.Equal(t, Get().GetLevel().String(), "warn")
}

func TestInitFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, Init(Options{Level: "loud", Console: &buf}))
	defer Close()
	gt.Equal(t, Get().GetLevel().String(), "info")
}

func TestAxiomSinkFiltersByLevel(t *testing.T) {
	s := &axiomSink{service: "pdfslicer", minLevel: zerolog.InfoLevel, ch: make(chan axiom.Event, 4)}

	n, err := s.WriteLevel(zerolog.DebugLevel, []byte(`{"level":"debug","message":"noise"}`))
	gt.NoError(t, err)
	gt.Equal(t, n, 35)
	gt.Equal(t, len(s.ch), 0)

	_, err = s.WriteLevel(zerolog.WarnLevel, []byte(`{"level":"warn","message":"kept"}`))
	gt.NoError(t, err)
	gt.Equal(t, len(s.ch), 1)

	ev := <-s.ch
	gt.Equal(t, ev["message"], any("kept"))
	gt.Equal(t, ev["service"], any("pdfslicer"))
}

package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// tempPattern names every temp file this package creates, so CleanupTemps can find them.
const tempPattern = "pdfslicer-*.pdf"

// Sink receives finished output files. Put returns where the file ended up.
type Sink interface {
	Put(ctx context.Context, localPath string, pageCount int) (string, error)
}

// LocalSink leaves outputs where they were written.
type LocalSink struct{}

func (LocalSink) Put(_ context.Context, localPath string, _ int) (string, error) {
	return localPath, nil
}

// Name is the last path element of ref, without query or fragment.
func Name(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Base(strings.TrimPrefix(ref, "file://"))
}

// IsS3 reports whether ref points at S3.
func IsS3(ref string) bool { return strings.HasPrefix(ref, "s3://") }

// IsRemote reports whether Resolve has to download ref.
func IsRemote(ref string) bool {
	return IsS3(ref) || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// SinkFor returns an S3Sink for s3:// refs and a LocalSink otherwise.
func SinkFor(ctx context.Context, ref string) (Sink, error) {
	if IsS3(ref) {
		return NewS3Sink(ctx, ref)
	}
	return LocalSink{}, nil
}

// Resolve turns a source reference into a local file path. Supported:
// - file://path or absolute/relative filesystem paths
// - http(s):// URLs (downloaded to temp)
// - s3://bucket/key (downloaded to temp via AWS SDK v2)
// The returned cleanup removes any temp file and is always safe to call.
func Resolve(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}
	// Strip optional #page fragment if present
	if i := strings.Index(ref, "#"); i >= 0 {
		ref = ref[:i]
	}

	var local string
	var err error
	switch {
	case IsS3(ref):
		bucket, key, perr := ParseS3URL(ref, false)
		if perr != nil {
			return "", noop, perr
		}
		cli, cerr := NewS3Client(ctx)
		if cerr != nil {
			return "", noop, cerr
		}
		local, err = cli.Download(ctx, bucket, key)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		local, err = downloadHTTPToTemp(ctx, http.DefaultClient, ref)
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), noop, nil
	default:
		return ref, noop, nil
	}
	if err != nil {
		return "", noop, err
	}
	return local, func() { os.Remove(local) }, nil
}

func downloadHTTPToTemp(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: http %d", url, resp.StatusCode)
	}
	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// CleanupTemps removes temp files created by Resolve that are older than maxAge.
func CleanupTemps(maxAge time.Duration) int {
	dir := os.TempDir()
	prefix := strings.TrimSuffix(tempPattern, "*.pdf")
	now := time.Now()
	removed := 0
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) >= maxAge {
			if os.Remove(filepath.Join(dir, e.Name())) == nil {
				removed++
			}
		}
	}
	return removed
}

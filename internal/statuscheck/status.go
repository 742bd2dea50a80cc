package statuscheck

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/local/pdfslicer/internal/pdftext"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// BucketHeader is the S3 call used to probe the output bucket.
type BucketHeader interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Checker aggregates readiness checks for the service dependencies.
type Checker struct {
	redis       RedisPinger
	s3Bucket    string
	s3          BucketHeader
	workDir     string
	textBackend string
}

// Options configures the Checker.
type Options struct {
	Redis       RedisPinger
	S3Bucket    string
	S3          BucketHeader // optional; built from the default AWS config when nil
	WorkDir     string
	TextBackend string
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Redis       Status `json:"redis"`
	S3          Status `json:"s3"`
	WorkDir     Status `json:"work_dir"`
	TextBackend Status `json:"text_backend"`
}

// Ready reports whether every subsystem is usable.
func (s Summary) Ready() bool {
	return s.Redis.OK && s.S3.OK && s.WorkDir.OK && s.TextBackend.OK
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	return &Checker{
		redis:       opts.Redis,
		s3Bucket:    opts.S3Bucket,
		s3:          opts.S3,
		workDir:     opts.WorkDir,
		textBackend: opts.TextBackend,
	}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Redis:       c.checkRedis(ctx),
		S3:          c.checkS3(ctx),
		WorkDir:     c.checkWorkDir(),
		TextBackend: c.checkTextBackend(),
	}
}

func (c *Checker) checkRedis(ctx context.Context) Status {
	if c.redis == nil {
		return Status{OK: true, Message: "Not configured, using in-memory status"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redis.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
	if c.s3Bucket == "" {
		return Status{OK: true, Message: "Bucket not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cli := c.s3
	if cli == nil {
		cfg, err := awscfg.LoadDefaultConfig(ctx)
		if err != nil {
			return Status{OK: false, Message: trimError(err)}
		}
		cli = s3.NewFromConfig(cfg)
	}
	if _, err := cli.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &c.s3Bucket}); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkWorkDir() Status {
	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	f, err := os.CreateTemp(c.workDir, ".ready-*")
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return Status{OK: true, Message: fmt.Sprintf("Writable: %s", filepath.Clean(c.workDir))}
}

func (c *Checker) checkTextBackend() Status {
	if _, err := pdftext.OpenerFor(c.textBackend); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	name := c.textBackend
	if name == "" {
		name = pdftext.BackendFitz
	}
	return Status{OK: true, Message: "Available: " + name}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}

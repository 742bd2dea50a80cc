package statuscheck

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/gt"
)

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(context.Context) error { return f.err }

type fakeS3 struct{ err error }

func (f fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.err
}

func TestSummaryAllReady(t *testing.T) {
	c := New(Options{
		Redis:       fakeRedis{},
		S3Bucket:    "out",
		S3:          fakeS3{},
		WorkDir:     t.TempDir(),
		TextBackend: "pure",
	})
	s := c.Summary(context.Background())
	gt.True(t, s.Ready())
	gt.Equal(t, s.Redis.Message, "Connected")
	gt.Equal(t, s.TextBackend.Message, "Available: pure")
}

func TestSummaryFailures(t *testing.T) {
	c := New(Options{
		Redis:       fakeRedis{err: errors.New("connection refused")},
		S3Bucket:    "out",
		S3:          fakeS3{err: errors.New("forbidden")},
		WorkDir:     t.TempDir(),
		TextBackend: "ocr",
	})
	s := c.Summary(context.Background())
	gt.False(t, s.Ready())
	gt.Equal(t, s.Redis.Message, "connection refused")
	gt.False(t, s.S3.OK)
	gt.False(t, s.TextBackend.OK)
	gt.True(t, s.WorkDir.OK)
}

func TestUnconfiguredIsReady(t *testing.T) {
	s := New(Options{WorkDir: t.TempDir()}).Summary(context.Background())
	gt.True(t, s.Ready())
	gt.Equal(t, s.S3.Message, "Bucket not configured")
}

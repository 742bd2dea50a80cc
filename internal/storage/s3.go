package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Client wraps the AWS S3 client for fetching sources and uploading results.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Client creates a new S3 client from the default AWS config chain.
func NewS3Client(ctx context.Context) (*S3Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	cli := s3.NewFromConfig(cfg)
	return &S3Client{client: cli, uploader: manager.NewUploader(cli)}, nil
}

// ParseS3URL splits s3://bucket/key. The key may be empty when allowEmptyKey is set.
func ParseS3URL(u string, allowEmptyKey bool) (bucket, key string, err error) {
	if !strings.HasPrefix(u, "s3://") {
		return "", "", fmt.Errorf("not an s3 url: %s", u)
	}
	p := strings.TrimPrefix(u, "s3://")
	bucket, key, _ = strings.Cut(p, "/")
	if bucket == "" || (key == "" && !allowEmptyKey) {
		return "", "", fmt.Errorf("invalid s3 url: %s", u)
	}
	return bucket, key, nil
}

// Download copies s3://bucket/key into a new temp file and returns its path.
func (s *S3Client) Download(ctx context.Context, bucket, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return "", fmt.Errorf("failed to download from S3: %w", err)
	}
	defer out.Body.Close()

	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, out.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to read S3 object: %w", err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Str("file", filepath.Base(f.Name())).Msg("downloaded s3 pdf to temp")
	return f.Name(), nil
}

// Upload streams a local file to bucket/key with the given metadata.
func (s *S3Client) Upload(ctx context.Context, bucket, key, localPath string, meta map[string]string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/pdf"),
		Metadata:    meta,
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("upload failed")
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	log.Info().Str("bucket", bucket).Str("key", key).Msg("uploaded pdf to S3")
	return nil
}

// S3Sink uploads every output under s3://Bucket/Prefix/<file name>.
type S3Sink struct {
	Client *S3Client
	Bucket string
	Prefix string
}

// NewS3Sink builds a sink from an s3:// url naming the bucket and prefix.
func NewS3Sink(ctx context.Context, url string) (*S3Sink, error) {
	bucket, prefix, err := ParseS3URL(url, true)
	if err != nil {
		return nil, err
	}
	cli, err := NewS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return &S3Sink{Client: cli, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

func (s *S3Sink) Key(localPath string) string {
	return path.Join(s.Prefix, filepath.Base(localPath))
}

func (s *S3Sink) Put(ctx context.Context, localPath string, pageCount int) (string, error) {
	key := s.Key(localPath)
	meta := map[string]string{
		"name":  filepath.Base(localPath),
		"pages": strconv.Itoa(pageCount),
	}
	if err := s.Client.Upload(ctx, s.Bucket, key, localPath, meta); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", s.Bucket, key), nil
}

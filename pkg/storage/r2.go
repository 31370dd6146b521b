package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Storage writes generated reports to a Cloudflare R2 (S3 compatible) bucket.
type R2Storage struct {
	client        *s3.Client
	bucketName    string
	publicURL     string
	keyPrefix     string
	uploadTimeout time.Duration
}

type R2Options struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicURL     string
	KeyPrefix     string
	UploadTimeout time.Duration
}

// Enabled reports whether enough settings are present to build a client.
func (o R2Options) Enabled() bool {
	return o.AccountID != "" && o.AccessKey != "" && o.SecretKey != "" && o.BucketName != ""
}

func NewR2Storage(ctx context.Context, opts R2Options) (*R2Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	prefix := strings.Trim(opts.KeyPrefix, "/")
	if prefix == "" {
		prefix = "reports"
	}
	timeout := opts.UploadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &R2Storage{
		client:        client,
		bucketName:    opts.BucketName,
		publicURL:     strings.TrimSuffix(opts.PublicURL, "/"),
		keyPrefix:     prefix,
		uploadTimeout: timeout,
	}, nil
}

// UploadBuffer stores data under <prefix>/<name> and returns its public URL,
// or the object key when no public URL is configured.
func (s *R2Storage) UploadBuffer(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(s.keyPrefix, name)

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload buffer to R2: %w", err)
	}

	if s.publicURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}

package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vikram-software/portal/internal/core/domain"
)

const defaultPresignTTL = 15 * time.Minute

// Config describes the attachment bucket. Endpoint is set for S3-compatible
// stores such as MinIO and switches the client to path-style addressing.
type Config struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

// Presigner issues presigned PUT and GET URLs for the attachment bucket.
type Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
}

func NewPresigner(ctx context.Context, cfg Config) (*Presigner, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &Presigner{client: s3.NewPresignClient(client), bucket: cfg.Bucket, ttl: ttl}, nil
}

func (p *Presigner) PresignPut(ctx context.Context, key, contentType string, size int64) (*domain.PresignedURL, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := p.client.PresignPutObject(ctx, input, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}
	return p.result(req.URL, key, http.MethodPut), nil
}

func (p *Presigner) PresignGet(ctx context.Context, key string) (*domain.PresignedURL, error) {
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign get %s: %w", key, err)
	}
	return p.result(req.URL, key, http.MethodGet), nil
}

func (p *Presigner) result(url, key, method string) *domain.PresignedURL {
	return &domain.PresignedURL{
		URL:       url,
		ObjectKey: key,
		Method:    method,
		ExpiresAt: time.Now().UTC().Add(p.ttl),
	}
}

package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	appconfig "bucketlist/internal/config"
	"bucketlist/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Storage stores objects in an S3-compatible bucket (AWS S3 or MinIO).
type S3Storage struct {
	client *s3.Client
	bucket string
}

// NewS3Storage builds an S3 client from the application config. The custom
// BaseEndpoint keeps it working against MinIO in development.
func NewS3Storage(cfg *appconfig.Config) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			// MinIO requires path-style bucket addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Storage{client: client, bucket: cfg.S3Bucket}, nil
}

// Put uploads body under key with a public-read ACL.
func (s *S3Storage) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	middleware.StorageUploadDuration.Observe(time.Since(start).Seconds())
	return err
}

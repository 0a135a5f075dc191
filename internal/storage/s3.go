package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"studocs/internal/config"
)

// s3Storage talks to AWS S3 or any compatible service through aws-sdk-go-v2.
// Uploads are conditional so an existing key is never overwritten.
type s3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3 builds the aws-sdk-go-v2 backend and makes sure the bucket exists.
// Endpoint is optional; when set, path-style addressing is used.
func NewS3(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	s, err := newS3(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newS3(ctx context.Context, cfg config.StorageConfig) (*s3Storage, error) {
	if err := validate(cfg, false); err != nil {
		return nil, err
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg))
			o.UsePathStyle = true
		}
	})

	return &s3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// endpointURL accepts both "host:port" (minio style) and full URLs.
func endpointURL(cfg config.StorageConfig) string {
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		return cfg.Endpoint
	}
	if cfg.UseSSL {
		return "https://" + cfg.Endpoint
	}
	return "http://" + cfg.Endpoint
}

func (s *s3Storage) ensureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}
	return nil
}

func (s *s3Storage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		IfNoneMatch: aws.String("*"),
		Metadata:    opt.Metadata,
	}
	if opt.ContentType != "" {
		in.ContentType = aws.String(opt.ContentType)
	}
	if opt.Size >= 0 {
		in.ContentLength = aws.Int64(opt.Size)
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put %s: %w", key, mapS3Error(err))
	}
	return ObjectInfo{
		Key:          key,
		Size:         opt.Size,
		ETag:         aws.ToString(out.ETag),
		ContentType:  opt.ContentType,
		LastModified: time.Now().UTC(),
		Metadata:     opt.Metadata,
	}, nil
}

func (s *s3Storage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("get %s: %w", key, mapS3Error(err))
	}
	// A chunked response carries no length; -1 tells callers to stream to EOF.
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, ObjectInfo{
		Key:          key,
		Size:         size,
		ETag:         aws.ToString(out.ETag),
		ContentType:  aws.ToString(out.ContentType),
		LastModified: aws.ToTime(out.LastModified),
		Metadata:     out.Metadata,
	}, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, mapS3Error(err))
	}
	return nil
}

func (s *s3Storage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// httpStatus is satisfied by the SDK's response errors.
type httpStatus interface {
	HTTPStatusCode() int
}

func mapS3Error(err error) error {
	var (
		noKey  *types.NoSuchKey
		status httpStatus
	)
	switch {
	case errors.As(err, &noKey):
		return fmt.Errorf("%w: %s", ErrObjectNotFound, err)
	case errors.As(err, &status) && status.HTTPStatusCode() == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrObjectNotFound, err)
	case errors.As(err, &status) && status.HTTPStatusCode() == http.StatusPreconditionFailed:
		return fmt.Errorf("%w: %s", ErrObjectExists, err)
	}
	return err
}

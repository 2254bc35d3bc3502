package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// s3API is the part of the S3 client the store uses
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps scraped pages in a bucket
type S3Store struct {
	client s3API
	bucket string
	prefix string
	logger *logrus.Logger
}

// NewS3Store creates a store using the default AWS credential chain
func NewS3Store(ctx context.Context, bucket, prefix string, logger *logrus.Logger) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newS3Store(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Store(client s3API, bucket, prefix string, logger *logrus.Logger) *S3Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Save uploads the page JSON and its screenshots
func (s *S3Store) Save(ctx context.Context, page *entities.ScrapedPage) (string, error) {
	key := pageKey(page)
	data, err := json.Marshal(page)
	if err != nil {
		return "", fmt.Errorf("failed to encode page: %w", err)
	}
	if err := s.put(ctx, key, data, "application/json"); err != nil {
		return "", err
	}
	for i, shot := range page.Screenshots {
		if err := s.put(ctx, screenshotKey(key, i), shot, "image/png"); err != nil {
			return "", err
		}
	}
	s.logger.WithFields(logrus.Fields{
		"bucket":      s.bucket,
		"key":         s.objectKey(key),
		"screenshots": len(page.Screenshots),
	}).Info("Scraped page uploaded")
	return key, nil
}

func (s *S3Store) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// Load downloads a page and the screenshots stored next to it
func (s *S3Store) Load(ctx context.Context, key string) (*entities.ScrapedPage, error) {
	data, err := s.get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from S3: %w", key, err)
	}
	var page entities.ScrapedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	for i := 0; ; i++ {
		shot, err := s.get(ctx, screenshotKey(key, i))
		if err != nil {
			var missing *s3types.NoSuchKey
			if errors.As(err, &missing) {
				break
			}
			return nil, fmt.Errorf("failed to download screenshot %d: %w", i, err)
		}
		page.Screenshots = append(page.Screenshots, shot)
	}
	return &page, nil
}

var _ interfaces.ResultStore = (*S3Store)(nil)

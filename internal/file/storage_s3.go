// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package file

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectAPI is the subset of the S3 client the storage uses.
type objectAPI interface {
	PutObject(context context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(context context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage keeps objects in an S3-compatible bucket.
type S3Storage struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// S3Config selects the bucket. Endpoint is set for S3-compatible services
// (MinIO, R2) and switches to path-style addressing.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
}

/*
NewS3Storage builds a client from the default AWS credential chain.

Parameters:
  - context: context.Context
  - cfg: S3Config

Returns:
  - *S3Storage
  - error: If the AWS configuration cannot be loaded
*/
func NewS3Storage(context context.Context, cfg S3Config) (*S3Storage, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(context, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("file: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			options.UsePathStyle = true
		}
	})

	return newS3Storage(client, cfg), nil
}

func newS3Storage(client objectAPI, cfg S3Config) *S3Storage {
	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: baseURL}
}

func (storage *S3Storage) Put(context context.Context, key string, content io.Reader, size int64, contentType string) (string, error) {
	_, err := storage.client.PutObject(context, &s3.PutObjectInput{
		Bucket:        aws.String(storage.bucket),
		Key:           aws.String(key),
		Body:          content,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3_put_failed: %w", err)
	}
	return storage.baseURL + "/" + key, nil
}

func (storage *S3Storage) Delete(context context.Context, key string) error {
	_, err := storage.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(storage.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3_delete_failed: %w", err)
	}
	return nil
}

// Package aws defines functions used to interact with S3 compatible object
// storage (AWS, Cloudflare R2, MinIO)
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3API is the part of the S3 client the object store uses
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type Options struct {
	Bucket          string
	Region          string
	Endpoint        string // Empty for AWS itself
	AccessKeyID     string
	SecretAccessKey string
}

type S3Client struct {
	C        S3API
	Bucket   *string
	uploader *manager.Uploader
}

// NewS3 connects to the bucket and makes sure it exists
func NewS3(ctx context.Context, o Options) (*S3Client, error) {
	var opts []func(*config.LoadOptions) error

	if o.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Region != "" {
			so.Region = o.Region
		}

		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})

	c := NewS3Client(client, o.Bucket)

	if err := c.CheckBucket(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// NewS3Client wraps an existing client without checking the bucket
func NewS3Client(client S3API, bucket string) *S3Client {
	return &S3Client{
		C:      client,
		Bucket: aws.String(bucket),
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = MultipartThreshold
		}),
	}
}

func (c *S3Client) CheckBucket(ctx context.Context) error {
	_, err := c.C.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: c.Bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return fmt.Errorf("bucket '%s' does not exist", *c.Bucket)
			}
		}

		return fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return nil
}

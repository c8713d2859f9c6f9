package aws

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/internal/service"
	"go.uber.org/zap"
)

// MultipartThreshold is the part size of multipart uploads. Smaller objects
// are sent with a single PutObject.
const MultipartThreshold int64 = 12 << 20

func (c *S3Client) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      c.Bucket,
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		var mu manager.MultiUploadFailure
		if errors.As(err, &mu) {
			zap.L().Error("Multipart upload failed", zap.String("key", key), zap.String("uploadID", mu.UploadID()))
		}

		return err
	}

	zap.L().Debug("Uploaded object", zap.String("key", key), zap.Int64("size", size))

	return nil
}

func (c *S3Client) Get(ctx context.Context, key string) (*model.Object, error) {
	out, err := c.C.GetObject(ctx, &s3.GetObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: object %s", service.ErrNotFound, key)
		}

		return nil, err
	}

	return &model.Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})

	return err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/pkg/filetype"
	"github.com/jvincentbasto/my-space/pkg/util"
	"go.uber.org/zap"
)

// DefaultMaxUploadSize is used when no upload limit is configured
const DefaultMaxUploadSize int64 = 50 << 20

type UploadInput struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
	Owner       string
	AccountID   string
	Path        string // Cached view to invalidate on success
}

type Uploader struct {
	Files   FileStore
	Objects ObjectStore
	Views   ViewCache
	URLs    *URLBuilder
	MaxSize int64
}

func NewUploader(f FileStore, o ObjectStore, v ViewCache, urls *URLBuilder, maxSize int64) *Uploader {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}

	return &Uploader{
		Files:   f,
		Objects: o,
		Views:   v,
		URLs:    urls,
		MaxSize: maxSize,
	}
}

// Do stores the object and then its metadata record. If the record can't be
// written the object is deleted again so no orphan is left behind.
func (u *Uploader) Do(ctx context.Context, in *UploadInput) (*model.File, error) {
	if in.Size > u.MaxSize {
		return nil, ErrFileTooLarge
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrInvalidInput)
	}

	id, err := util.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file ID, %w", err)
	}

	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	key := uuid.NewString()

	if err := u.Objects.Put(ctx, key, ct, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("failed to store object, %w", err)
	}

	zap.L().Debug("Object stored", zap.String("key", key), zap.Int64("size", in.Size))

	t, ext := filetype.Classify(in.Name)

	f := &model.File{
		ID:          id,
		Name:        in.Name,
		Type:        t,
		Extension:   ext,
		Size:        in.Size,
		Owner:       in.Owner,
		AccountID:   in.AccountID,
		Users:       model.StringSlice{},
		URL:         u.URLs.View(key),
		BucketField: key,
	}

	if err := u.Files.Create(ctx, f); err != nil {
		err = fmt.Errorf("failed to save file record, %w", err)

		// The request may already be cancelled, cleanup must still run
		if delErr := u.Objects.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(delErr))
			return nil, errors.Join(err, fmt.Errorf("failed to delete object %s, %w", key, delErr))
		}

		zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
		return nil, err
	}

	u.Views.Invalidate(in.Path)

	return f, nil
}

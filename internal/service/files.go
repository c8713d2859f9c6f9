package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/internal/query"
	"github.com/jvincentbasto/my-space/pkg/validators"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardLimit is the number of recent files shown on the dashboard
const DashboardLimit = 10

type FileService struct {
	files    FileStore
	objects  ObjectStore
	views    ViewCache
	uploader *Uploader
	bucket   string
	quota    int64
}

func NewFileService(f FileStore, o ObjectStore, v ViewCache, up *Uploader, quota int64) *FileService {
	if quota <= 0 {
		quota = DefaultQuota
	}

	return &FileService{
		files:    f,
		objects:  o,
		views:    v,
		uploader: up,
		bucket:   up.URLs.Bucket,
		quota:    quota,
	}
}

// FileList is a page of files and the number of files matching without the
// limit
type FileList struct {
	Total int64        `json:"total"`
	Files []model.File `json:"documents"`
}

type Dashboard struct {
	Files FileList    `json:"files"`
	Usage model.Usage `json:"usage"`
}

// GetFiles lists the files user owns or that are shared with them
func (s *FileService) GetFiles(ctx context.Context, user *model.User, r query.Request) (*FileList, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	r.UserID = user.ID
	r.Email = user.Email
	if r.Sort == "" {
		r.Sort = query.DefaultSort
	}

	files, total, err := s.files.List(ctx, query.Build(r))
	if err != nil {
		if errors.Is(err, ErrUnknownSortBy) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return &FileList{Total: total, Files: files}, nil
}

// TotalSpaceUsed aggregates the files user owns. Shared files count towards
// their owner only.
func (s *FileService) TotalSpaceUsed(ctx context.Context, user *model.User) (*model.Usage, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	files, _, err := s.files.List(ctx, []query.Directive{query.Equal(query.FieldOwner, user.ID)})
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	u := Aggregate(files, s.quota)
	return &u, nil
}

// Dashboard fetches the recent files and the usage summary concurrently
func (s *FileService) Dashboard(ctx context.Context, user *model.User) (*Dashboard, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	var (
		files *FileList
		usage *model.Usage
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		files, err = s.GetFiles(gctx, user, query.Request{Limit: DashboardLimit})
		return err
	})

	g.Go(func() error {
		var err error
		usage, err = s.TotalSpaceUsed(gctx, user)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{Files: *files, Usage: *usage}, nil
}

// Upload stores a new file owned by user
func (s *FileService) Upload(ctx context.Context, user *model.User, in *UploadInput) (*model.File, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if err := validators.FileNameValidator(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	in.Owner = user.ID
	in.AccountID = user.AccountID

	return s.uploader.Do(ctx, in)
}

// visible returns the file with id if user may see it
func (s *FileService) visible(ctx context.Context, user *model.User, field, value string) (*model.File, error) {
	files, _, err := s.files.List(ctx, []query.Directive{
		query.Or(
			query.Equal(query.FieldOwner, user.ID),
			query.Contains(query.FieldUsers, user.Email),
		),
		query.Equal(field, value),
		query.Limit(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up file, %w", err)
	}

	if len(files) == 0 {
		return nil, ErrNotFound
	}

	return &files[0], nil
}

// Open returns the record and the stored object behind an object id from a
// view or download link. The caller must close the object body.
func (s *FileService) Open(ctx context.Context, user *model.User, bucket, objectID string) (*model.File, *model.Object, error) {
	if user == nil {
		return nil, nil, ErrUnauthenticated
	}

	if bucket != s.bucket {
		return nil, nil, ErrNotFound
	}

	f, err := s.visible(ctx, user, query.FieldObject, objectID)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.objects.Get(ctx, f.BucketField)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get object, %w", err)
	}

	return f, obj, nil
}

// Action is a mutation of an existing file. The set of actions is closed.
type Action interface {
	isAction()
}

// Rename sets the base name, the stored extension is kept
type Rename struct {
	Name string
}

// Share replaces the viewer list
type Share struct {
	Emails []string
}

// Delete removes the record and then the object
type Delete struct{}

func (Rename) isAction() {}
func (Share) isAction()  {}
func (Delete) isAction() {}

// Execute applies a to the file with fileID. Only the owner may mutate a
// file. The cached view of path is invalidated on success. The returned file
// is nil for Delete.
func (s *FileService) Execute(ctx context.Context, user *model.User, fileID, path string, a Action) (*model.File, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	f, err := s.visible(ctx, user, query.FieldID, fileID)
	if err != nil {
		return nil, err
	}

	if f.Owner != user.ID {
		return nil, ErrForbidden
	}

	var out *model.File

	switch a := a.(type) {
	case Rename:
		out, err = s.rename(ctx, f, a)
	case Share:
		out, err = s.share(ctx, f, a)
	case Delete:
		err = s.delete(ctx, f, path)
	default:
		return nil, fmt.Errorf("%w: unknown file action %T", ErrInvalidInput, a)
	}

	if err != nil {
		return nil, err
	}

	s.views.Invalidate(path)

	return out, nil
}

// RenamedName joins a new base name with the existing extension
func RenamedName(base, ext string) string {
	base = strings.TrimSpace(base)
	if ext == "" {
		return base
	}

	return base + "." + ext
}

func (s *FileService) rename(ctx context.Context, f *model.File, a Rename) (*model.File, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, validators.ErrFileNameEmpty)
	}

	name := RenamedName(a.Name, f.Extension)

	if err := validators.FileNameValidator(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	out, err := s.files.Update(ctx, f.ID, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to rename file, %w", err)
	}

	return out, nil
}

func (s *FileService) share(ctx context.Context, f *model.File, a Share) (*model.File, error) {
	emails, err := validators.EmailListValidator(a.Emails)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	out, err := s.files.Update(ctx, f.ID, map[string]any{"users": model.StringSlice(emails)})
	if err != nil {
		return nil, fmt.Errorf("failed to share file, %w", err)
	}

	return out, nil
}

// delete does not restore the record when the object can't be deleted. The
// orphaned object is logged with its key.
func (s *FileService) delete(ctx context.Context, f *model.File, path string) error {
	if err := s.files.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to delete file record, %w", err)
	}

	if err := s.objects.Delete(ctx, f.BucketField); err != nil {
		zap.L().Error("Object left behind after file delete",
			zap.String("fileID", f.ID),
			zap.String("key", f.BucketField),
			zap.Error(err),
		)

		s.views.Invalidate(path)
		return fmt.Errorf("failed to delete object, %w", err)
	}

	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/internal/query"
	"github.com/jvincentbasto/my-space/internal/service"
	"gorm.io/gorm"
)

// list runs directives against the table of T and returns the page and the
// number of rows matching without the limit
func list[T any](ctx context.Context, db *gorm.DB, ds []query.Directive) ([]T, int64, error) {
	c, err := compile(ds)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(c.filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []T{}
	if total == 0 {
		return rows, 0, nil
	}

	if err := db.WithContext(ctx).Model(new(T)).Scopes(c.filter, c.page).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

type FileStore struct {
	db *gorm.DB
}

func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

func (s *FileStore) List(ctx context.Context, ds []query.Directive) ([]model.File, int64, error) {
	return list[model.File](ctx, s.db, ds)
}

func (s *FileStore) Create(ctx context.Context, f *model.File) error {
	return s.db.WithContext(ctx).Create(f).Error
}

// Update writes fields, keyed by column, and returns the updated row
func (s *FileStore) Update(ctx context.Context, id string, fields map[string]any) (*model.File, error) {
	db := s.db.WithContext(ctx)

	r := db.Model(&model.File{}).Where("id = ?", id).Updates(fields)
	if r.Error != nil {
		return nil, r.Error
	}

	if r.RowsAffected == 0 {
		return nil, service.ErrNotFound
	}

	var f model.File
	if err := db.Where("id = ?", id).First(&f).Error; err != nil {
		return nil, fmt.Errorf("failed to reload file, %w", err)
	}

	return &f, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	r := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return service.ErrNotFound
	}

	return nil
}

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List(ctx context.Context, ds []query.Directive) ([]model.User, error) {
	users, _, err := list[model.User](ctx, s.db, ds)
	return users, err
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

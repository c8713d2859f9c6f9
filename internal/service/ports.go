package service

import (
	"context"
	"io"

	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/internal/query"
)

// Accounts issues passcodes and manages sessions
type Accounts interface {
	// CreateEmailToken mails a passcode to email and returns the account it
	// belongs to. The same email always maps to the same account.
	CreateEmailToken(ctx context.Context, email string) (string, error)
	// CreateSession exchanges a passcode for a session secret
	CreateSession(ctx context.Context, accountID, otp string) (string, error)
	GetAccount(ctx context.Context, secret string) (*model.Account, error)
	DeleteSession(ctx context.Context, secret string) error
}

type UserStore interface {
	List(ctx context.Context, d []query.Directive) ([]model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type FileStore interface {
	// List returns the matching rows and the total number of matches ignoring
	// any limit directive
	List(ctx context.Context, d []query.Directive) ([]model.File, int64, error)
	Create(ctx context.Context, f *model.File) error
	Update(ctx context.Context, id string, fields map[string]any) (*model.File, error)
	Delete(ctx context.Context, id string) error
}

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (*model.Object, error)
	Delete(ctx context.Context, key string) error
}

// ViewCache drops cached responses for a path and everything below it
type ViewCache interface {
	Invalidate(path string)
}

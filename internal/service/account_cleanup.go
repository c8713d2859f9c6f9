package service

import (
	"context"
	"time"

	"github.com/jvincentbasto/my-space/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountCleanup periodically deletes accounts whose first login never
// completed in time, together with the profile created for them
func AccountCleanup(ctx context.Context, t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Account cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := CleanAccounts(ctx, db, now)
				if err != nil {
					zap.L().Error("Failed to cleanup accounts", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Account cleanup finished", zap.Int("deleted", n))
				}
			}
		}
	}()
}

// CleanAccounts does a single cleanup pass relative to now and returns the
// number of accounts removed
func CleanAccounts(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	var ids []string

	err := db.WithContext(ctx).
		Model(&model.Account{}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Pluck("id", &ids).
		Error
	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, nil
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id IN ?", ids).Delete(&model.User{}).Error; err != nil {
			return err
		}

		if err := tx.Where("account_id IN ?", ids).Delete(&model.EmailToken{}).Error; err != nil {
			return err
		}

		if err := tx.Where("account_id IN ?", ids).Delete(&model.Session{}).Error; err != nil {
			return err
		}

		return tx.Where("id IN ?", ids).Delete(&model.Account{}).Error
	})
	if err != nil {
		return 0, err
	}

	return len(ids), nil
}

package service

import (
	"context"
	"time"

	"github.com/jvincentbasto/my-space/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup periodically removes expired or redeemed passcodes and
// expired sessions until ctx is cancelled
func TokenCleanup(ctx context.Context, t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if err := CleanTokens(ctx, db, now); err != nil {
					zap.L().Error("Failed to cleanup tokens", zap.Error(err))
				}
			}
		}
	}()
}

// CleanTokens does a single cleanup pass relative to now
func CleanTokens(ctx context.Context, db *gorm.DB, now time.Time) error {
	db = db.WithContext(ctx)

	r := db.
		Where("expires_at < ? OR used = ?", now, true).
		Delete(&model.EmailToken{})
	if r.Error != nil {
		return r.Error
	}

	s := db.
		Where("expires_at < ?", now).
		Delete(&model.Session{})
	if s.Error != nil {
		return s.Error
	}

	if r.RowsAffected+s.RowsAffected > 0 {
		zap.L().Debug("Cleaned up tokens",
			zap.Int64("emailTokens", r.RowsAffected),
			zap.Int64("sessions", s.RowsAffected),
		)
	}

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/pkg/security"
	"github.com/jvincentbasto/my-space/pkg/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const otpLength = 6

type AccountOpts struct {
	OTPTTL         time.Duration
	OTPCooldown    time.Duration
	OTPMaxAttempts int
	SessionTTL     time.Duration
	PendingTTL     time.Duration // How long an account may stay without a first login
}

func (o *AccountOpts) defaults() {
	if o.OTPTTL <= 0 {
		o.OTPTTL = 15 * time.Minute
	}
	if o.OTPMaxAttempts <= 0 {
		o.OTPMaxAttempts = 5
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 30 * 24 * time.Hour
	}
	if o.PendingTTL <= 0 {
		o.PendingTTL = 7 * 24 * time.Hour
	}
}

// AccountService is the gorm backed implementation of Accounts
type AccountService struct {
	db     *gorm.DB
	argon  *security.ArgonHash
	signer *security.SessionSigner
	mailer Mailer
	opts   AccountOpts
	now    func() time.Time
}

func NewAccountService(db *gorm.DB, signer *security.SessionSigner, mailer Mailer, opts AccountOpts) *AccountService {
	opts.defaults()

	return &AccountService{
		db:     db,
		argon:  security.New(),
		signer: signer,
		mailer: mailer,
		opts:   opts,
		now:    time.Now,
	}
}

func (a *AccountService) CreateEmailToken(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := a.now()

	code, err := security.GenerateOTP(otpLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate passcode, %w", err)
	}

	hash, err := a.argon.Hash(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode, %w", err)
	}

	var account model.Account

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			id, err := util.NewID()
			if err != nil {
				return err
			}

			expiry := now.Add(a.opts.PendingTTL)
			account = model.Account{ID: id, Email: email, CreatedAt: now, ExpiresAt: &expiry}

			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var last model.EmailToken
		if err := tx.
			Where("account_id = ?", account.ID).
			Order("id desc").
			Limit(1).
			Find(&last).
			Error; err != nil {
			return err
		}

		if last.ID != 0 && now.Sub(last.CreatedAt) < a.opts.OTPCooldown {
			return ErrOTPTooSoon
		}

		// Only the newest passcode is valid
		if err := tx.
			Model(&model.EmailToken{}).
			Where("account_id = ? AND used = ?", account.ID, false).
			Update("used", true).
			Error; err != nil {
			return err
		}

		return tx.Create(&model.EmailToken{
			AccountID:  account.ID,
			SecretHash: hash,
			ExpiresAt:  now.Add(a.opts.OTPTTL),
			CreatedAt:  now,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrOTPTooSoon) {
			return "", err
		}

		return "", fmt.Errorf("failed to create email token, %w", err)
	}

	if err := a.mailer.SendOTP(email, code); err != nil {
		return "", fmt.Errorf("failed to send passcode email, %w", err)
	}

	zap.L().Debug("Passcode sent", zap.String("accountID", account.ID))

	return account.ID, nil
}

func (a *AccountService) CreateSession(ctx context.Context, accountID, otp string) (string, error) {
	db := a.db.WithContext(ctx)
	now := a.now()

	var token model.EmailToken

	err := db.
		Where("account_id = ? AND used = ?", accountID, false).
		Order("id desc").
		First(&token).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidOTP
		}

		return "", fmt.Errorf("failed to find email token, %w", err)
	}

	if now.After(token.ExpiresAt) || token.Attempts >= a.opts.OTPMaxAttempts {
		return "", ErrInvalidOTP
	}

	ok, err := a.argon.Verify(otp, token.SecretHash)
	if err != nil {
		return "", fmt.Errorf("failed to verify passcode, %w", err)
	}

	if !ok {
		if err := db.
			Model(&model.EmailToken{}).
			Where("id = ?", token.ID).
			Update("attempts", gorm.Expr("attempts + 1")).
			Error; err != nil {
			zap.L().Error("Failed to count passcode attempt", zap.Int("tokenID", token.ID), zap.Error(err))
		}

		return "", ErrInvalidOTP
	}

	session := model.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: now.Add(a.opts.SessionTTL),
		CreatedAt: now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		r := tx.
			Model(&model.EmailToken{}).
			Where("id = ? AND used = ?", token.ID, false).
			Updates(map[string]any{
				"used":    true,
				"used_at": now,
			})
		if r.Error != nil {
			return r.Error
		}

		// Someone else redeemed it in the meantime
		if r.RowsAffected != 1 {
			return ErrInvalidOTP
		}

		if err := tx.
			Model(&model.Account{}).
			Where("id = ?", accountID).
			Update("expires_at", nil).
			Error; err != nil {
			return err
		}

		return tx.Create(&session).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			return "", err
		}

		return "", fmt.Errorf("failed to create session, %w", err)
	}

	secret, err := a.signer.Sign(session.ID, accountID, session.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to sign session, %w", err)
	}

	return secret, nil
}

func (a *AccountService) GetAccount(ctx context.Context, secret string) (*model.Account, error) {
	claims, err := a.signer.Parse(secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	db := a.db.WithContext(ctx)

	var session model.Session
	err = db.
		Where("id = ? AND account_id = ?", claims.SessionID, claims.Subject).
		First(&session).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}

		return nil, fmt.Errorf("failed to find session, %w", err)
	}

	if a.now().After(session.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	var account model.Account
	if err := db.Where("id = ?", session.AccountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}

		return nil, fmt.Errorf("failed to find account, %w", err)
	}

	return &account, nil
}

func (a *AccountService) DeleteSession(ctx context.Context, secret string) error {
	claims, err := a.signer.Parse(secret)
	if err != nil {
		return ErrUnauthenticated
	}

	if err := a.db.WithContext(ctx).
		Where("id = ?", claims.SessionID).
		Delete(&model.Session{}).
		Error; err != nil {
		return fmt.Errorf("failed to delete session, %w", err)
	}

	return nil
}

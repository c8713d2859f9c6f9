package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccounts(t *testing.T) (*AccountService, *fakeMailer) {
	t.Helper()

	m := &fakeMailer{}
	a := NewAccountService(newTestDB(t), security.NewSessionSigner("test-secret"), m, AccountOpts{})

	return a, m
}

func TestCreateEmailTokenReusesAccount(t *testing.T) {
	a, m := newTestAccounts(t)
	ctx := context.Background()

	first, err := a.CreateEmailToken(ctx, "Ann@Example.com ")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := a.CreateEmailToken(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, m.sent, 2)
	assert.Equal(t, "ann@example.com", m.sent[0].to)
	assert.Len(t, m.sent[0].code, 6)

	var unused int64
	require.NoError(t, a.db.Model(&model.EmailToken{}).Where("used = ?", false).Count(&unused).Error)
	assert.EqualValues(t, 1, unused)
}

func TestCreateEmailTokenCooldown(t *testing.T) {
	a, _ := newTestAccounts(t)
	a.opts.OTPCooldown = time.Minute
	ctx := context.Background()

	_, err := a.CreateEmailToken(ctx, "ann@example.com")
	require.NoError(t, err)

	_, err = a.CreateEmailToken(ctx, "ann@example.com")
	assert.ErrorIs(t, err, ErrOTPTooSoon)
}

func TestCreateEmailTokenMailFailure(t *testing.T) {
	a, m := newTestAccounts(t)
	m.err = errors.New("smtp down")

	_, err := a.CreateEmailToken(context.Background(), "ann@example.com")
	assert.ErrorContains(t, err, "smtp down")
}

func TestCreateSessionFlow(t *testing.T) {
	a, m := newTestAccounts(t)
	ctx := context.Background()

	accountID, err := a.CreateEmailToken(ctx, "ann@example.com")
	require.NoError(t, err)

	secret, err := a.CreateSession(ctx, accountID, m.last())
	require.NoError(t, err)

	account, err := a.GetAccount(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, accountID, account.ID)
	assert.Equal(t, "ann@example.com", account.Email)
	assert.Nil(t, account.ExpiresAt)

	// A passcode can only be redeemed once
	_, err = a.CreateSession(ctx, accountID, m.last())
	assert.ErrorIs(t, err, ErrInvalidOTP)

	require.NoError(t, a.DeleteSession(ctx, secret))

	_, err = a.GetAccount(ctx, secret)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateSessionRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong code counts attempts", func(t *testing.T) {
		a, m := newTestAccounts(t)
		a.opts.OTPMaxAttempts = 2

		accountID, err := a.CreateEmailToken(ctx, "ann@example.com")
		require.NoError(t, err)

		wrong := "000000"
		if m.last() == wrong {
			wrong = "111111"
		}

		for range 2 {
			_, err = a.CreateSession(ctx, accountID, wrong)
			assert.ErrorIs(t, err, ErrInvalidOTP)
		}

		// Locked out even with the right code
		_, err = a.CreateSession(ctx, accountID, m.last())
		assert.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("expired code", func(t *testing.T) {
		a, m := newTestAccounts(t)

		accountID, err := a.CreateEmailToken(ctx, "ann@example.com")
		require.NoError(t, err)

		a.now = func() time.Time { return time.Now().Add(time.Hour) }

		_, err = a.CreateSession(ctx, accountID, m.last())
		assert.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("superseded code", func(t *testing.T) {
		a, m := newTestAccounts(t)

		accountID, err := a.CreateEmailToken(ctx, "ann@example.com")
		require.NoError(t, err)
		old := m.last()

		_, err = a.CreateEmailToken(ctx, "ann@example.com")
		require.NoError(t, err)

		if old != m.last() {
			_, err = a.CreateSession(ctx, accountID, old)
			assert.ErrorIs(t, err, ErrInvalidOTP)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		a, _ := newTestAccounts(t)

		_, err := a.CreateSession(ctx, "missing", "123456")
		assert.ErrorIs(t, err, ErrInvalidOTP)
	})
}

func TestGetAccountInvalidSecrets(t *testing.T) {
	a, m := newTestAccounts(t)
	ctx := context.Background()

	_, err := a.GetAccount(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other, err := security.NewSessionSigner("other").Sign("sid", "acc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = a.GetAccount(ctx, other)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Signed correctly but the session row has expired
	accountID, err := a.CreateEmailToken(ctx, "ann@example.com")
	require.NoError(t, err)

	secret, err := a.CreateSession(ctx, accountID, m.last())
	require.NoError(t, err)

	require.NoError(t, a.db.Model(&model.Session{}).
		Where("account_id = ?", accountID).
		Update("expires_at", time.Now().Add(-time.Minute)).
		Error)

	_, err = a.GetAccount(ctx, secret)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jvincentbasto/my-space/internal/model"
	"github.com/jvincentbasto/my-space/internal/query"
	"github.com/jvincentbasto/my-space/pkg/util"
	"github.com/jvincentbasto/my-space/pkg/validators"
	"go.uber.org/zap"
)

// PlaceholderAvatar is given to every user created by signup
const PlaceholderAvatar = "https://img.freepik.com/free-psd/3d-illustration-person-with-sunglasses_23-2149436188.jpg"

// LoginResult carries either the pending account handle or a user facing
// error. Backend failures are returned as errors instead.
type LoginResult struct {
	AccountID string `json:"accountId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type UserService struct {
	accounts Accounts
	users    UserStore
}

func NewUserService(a Accounts, u UserStore) *UserService {
	return &UserService{accounts: a, users: u}
}

func (s *UserService) byEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := s.users.List(ctx, []query.Directive{query.Equal(query.FieldEmail, email)})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	if len(users) == 0 {
		return nil, nil
	}

	return &users[0], nil
}

// SendEmailOTP mails a passcode and returns the pending account handle
func (s *UserService) SendEmailOTP(ctx context.Context, email string) (string, error) {
	email = validators.NormalizeEmail(email)
	if err := validators.EmailValidator(email); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return s.accounts.CreateEmailToken(ctx, email)
}

// VerifySecret exchanges a passcode for a session secret
func (s *UserService) VerifySecret(ctx context.Context, accountID, otp string) (string, error) {
	if accountID == "" || otp == "" {
		return "", fmt.Errorf("%w: missing account or passcode", ErrInvalidInput)
	}

	return s.accounts.CreateSession(ctx, accountID, otp)
}

// CurrentUser returns the user behind secret. Without a valid session or a
// matching user it returns nil and no error.
func (s *UserService) CurrentUser(ctx context.Context, secret string) (*model.User, error) {
	if secret == "" {
		return nil, nil
	}

	account, err := s.accounts.GetAccount(ctx, secret)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil, nil
		}

		return nil, err
	}

	users, err := s.users.List(ctx, []query.Directive{query.Equal(query.FieldAccountID, account.ID)})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	if len(users) == 0 {
		return nil, nil
	}

	return &users[0], nil
}

// Logout deletes the session behind secret. Failures are only logged, the
// caller logs the client out regardless.
func (s *UserService) Logout(ctx context.Context, secret string) {
	if secret == "" {
		return
	}

	if err := s.accounts.DeleteSession(ctx, secret); err != nil && !errors.Is(err, ErrUnauthenticated) {
		zap.L().Warn("Failed to delete session", zap.Error(err))
	}
}

// Signup sends a passcode and creates the user on first use of email. The
// pending account handle is returned for new and existing users alike.
func (s *UserService) Signup(ctx context.Context, fullName, email string) (string, error) {
	accountID, err := s.SendEmailOTP(ctx, email)
	if err != nil {
		return "", err
	}

	email = validators.NormalizeEmail(email)

	existing, err := s.byEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if existing != nil {
		return accountID, nil
	}

	id, err := util.NewID()
	if err != nil {
		return "", fmt.Errorf("failed to generate user ID, %w", err)
	}

	if err := s.users.Create(ctx, &model.User{
		ID:        id,
		FullName:  fullName,
		Email:     email,
		Avatar:    PlaceholderAvatar,
		AccountID: accountID,
	}); err != nil {
		return "", fmt.Errorf("failed to create user, %w", err)
	}

	zap.L().Debug("User created", zap.String("userID", id))

	return accountID, nil
}

// Login sends a passcode to an existing user
func (s *UserService) Login(ctx context.Context, email string) (*LoginResult, error) {
	email = validators.NormalizeEmail(email)
	if err := validators.EmailValidator(email); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	u, err := s.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if u == nil {
		return &LoginResult{Error: "User not found"}, nil
	}

	accountID, err := s.accounts.CreateEmailToken(ctx, email)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccountID: accountID}, nil
}

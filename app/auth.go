// Package app contains the application services that implement the
// store's use cases over the ports.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// resetTokenTTL is how long a password-reset link stays valid.
const resetTokenTTL = time.Hour

// AuthService handles registration, login and password recovery.
type AuthService struct {
	users  ports.UserStore
	resets ports.ResetTokenStore
	hasher ports.Hasher
	tokens ports.TokenService
	email  ports.EmailSender
	ids    ports.IDGenerator
	clock  ports.Clock
	logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users ports.UserStore,
	resets ports.ResetTokenStore,
	hasher ports.Hasher,
	tokens ports.TokenService,
	email ports.EmailSender,
	ids ports.IDGenerator,
	clock ports.Clock,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		resets: resets,
		hasher: hasher,
		tokens: tokens,
		email:  email,
		ids:    ids,
		clock:  clock,
		logger: logger,
	}
}

// RegisterInput carries a validated registration payload.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Register creates an account and returns the user with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (identity.User, string, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return identity.User{}, "", err
	}

	now := s.clock.Now().UTC()
	user := identity.User{
		ID:           s.ids.New(),
		Email:        identity.NormalizeEmail(in.Email),
		FullName:     in.FullName,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         identity.RoleUser,
		Permissions:  []string{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return identity.User{}, "", apperr.BadRequest("Email already registered")
		}
		return identity.User{}, "", err
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return identity.User{}, "", err
	}

	// Welcome email is best-effort; registration already succeeded.
	if err := s.email.SendWelcome(ctx, user.Email, user.FullName); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("send welcome email")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user.Sanitized(), token, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (identity.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return identity.User{}, "", apperr.Unauthorized("Invalid email or password")
		}
		return identity.User{}, "", err
	}

	if !s.hasher.Compare([]byte(user.PasswordHash), password) {
		return identity.User{}, "", apperr.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return identity.User{}, "", apperr.Forbidden("Account is deactivated")
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return identity.User{}, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return user.Sanitized(), token, nil
}

// ForgotPassword issues a reset token and mails it to the user. An
// unknown email is silently accepted so the endpoint does not reveal
// which addresses have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.logger.Debug().Str("email", email).Msg("password reset for unknown email")
			return nil
		}
		return err
	}

	raw := identity.GenerateResetToken()
	token := ports.ResetToken{
		UserID:    user.ID,
		Hash:      identity.HashResetToken(raw),
		ExpiresAt: s.clock.Now().UTC().Add(resetTokenTTL),
	}
	if err := s.resets.Save(ctx, token); err != nil {
		return err
	}

	if err := s.email.SendPasswordReset(ctx, user.Email, user.FullName, raw); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset requested")
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	token, err := s.resets.GetByHash(ctx, identity.HashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.BadRequest("Reset token is invalid or expired")
		}
		return err
	}
	if s.clock.Now().UTC().After(token.ExpiresAt) {
		return apperr.BadRequest("Reset token is invalid or expired")
	}

	user, err := s.users.Get(ctx, token.UserID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if err := s.resets.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// ChangePassword sets a new password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	if !s.hasher.Compare([]byte(user.PasswordHash), current) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

// Me returns the sanitized profile for an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (identity.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return identity.User{}, apperr.NotFound("User not found")
		}
		return identity.User{}, err
	}
	return user.Sanitized(), nil
}

func identityOf(u identity.User) identity.Identity {
	return identity.Identity{
		UserID:      u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		Permissions: u.Permissions,
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pipeline_crm_backend/internal/auth/password"
	"pipeline_crm_backend/internal/auth/repository"
	"pipeline_crm_backend/internal/auth/token"
	"pipeline_crm_backend/internal/email"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
	"pipeline_crm_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
)

// UserStore is the subset of the auth repository the service depends on.
type UserStore interface {
	Create(ctx context.Context, email, name, passwordHash, role string) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	List(ctx context.Context) ([]repository.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// RefreshStore persists refresh and reset tokens.
type RefreshStore interface {
	Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Revoke(ctx context.Context, tokenHash string) error
	SaveReset(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	ConsumeReset(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

type Service struct {
	users  UserStore
	tokens RefreshStore
	cfg    config.AuthServiceConfig
	mail   email.Sender
}

func New(users UserStore, tokens RefreshStore, cfg config.AuthServiceConfig, mailer email.Sender) *Service {
	return &Service{users: users, tokens: tokens, cfg: cfg, mail: mailer}
}

// SignIn verifies credentials and returns an access token and refresh token.
func (s *Service) SignIn(ctx context.Context, emailAddr, plainPassword string) (string, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token and returns a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := token.HashSHA256(refreshToken)
	userID, err := s.tokens.Lookup(ctx, hash)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	// Rotation: the presented token is dead regardless of what happens next.
	_ = s.tokens.Revoke(ctx, hash)
	return s.issueTokens(ctx, user)
}

// SignOut revokes the presented refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, token.HashSHA256(refreshToken))
}

// ForgotPassword issues a reset token and mails a reset link. Unknown emails
// are silently accepted so the endpoint does not leak account existence.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		return nil
	}

	resetToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	if err := s.tokens.SaveReset(ctx, token.HashSHA256(resetToken), user.ID, s.cfg.GetResetTokenTTL()); err != nil {
		return err
	}

	resetURL := s.cfg.GetAppBaseURL() + "/reset-password?token=" + resetToken
	return s.mail.SendPasswordResetEmail(ctx, user.Email, resetURL)
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.tokens.ConsumeReset(ctx, token.HashSHA256(resetToken))
	if err != nil {
		return ErrTokenInvalid
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}

// CreateUser registers a new user. Admin only.
func (s *Service) CreateUser(ctx context.Context, actor access.Actor, emailAddr, name, plainPassword string, role access.Role) (repository.User, error) {
	if !actor.IsAdmin() {
		return repository.User{}, apperr.Forbidden("only admins can create users")
	}
	if !role.Valid() {
		return repository.User{}, apperr.Validation("unknown role")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return repository.User{}, err
	}

	user, err := s.users.Create(ctx, strings.TrimSpace(emailAddr), strings.TrimSpace(name), hash, string(role))
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return repository.User{}, apperr.Conflict(err.Error())
	}
	return user, err
}

// ListUsers returns all users. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor access.Actor) ([]repository.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only admins can list users")
	}
	return s.users.List(ctx)
}

// UpdateUserRole changes another user's role. Admin only.
func (s *Service) UpdateUserRole(ctx context.Context, actor access.Actor, userID uuid.UUID, role access.Role) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can change roles")
	}
	if !role.Valid() {
		return apperr.Validation("unknown role")
	}

	err := s.users.UpdateRole(ctx, userID, string(role))
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}

// DeactivateUser disables a user account. Admin only.
func (s *Service) DeactivateUser(ctx context.Context, actor access.Actor, userID uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can deactivate users")
	}

	err := s.users.SetActive(ctx, userID, false)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return err
}

func (s *Service) issueTokens(ctx context.Context, user repository.User) (string, string, error) {
	accessToken, err := newAccessToken(s.cfg.GetJWTAccessSecret(), s.cfg.GetAccessTokenTTL(), user.ID, user.Role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return "", "", err
	}

	if err := s.tokens.Save(ctx, token.HashSHA256(refreshToken), user.ID, s.cfg.GetRefreshTokenTTL()); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func newAccessToken(secret string, ttl time.Duration, userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"type": "access",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

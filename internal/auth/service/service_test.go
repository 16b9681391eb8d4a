package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pipeline_crm_backend/internal/auth/password"
	"pipeline_crm_backend/internal/auth/repository"
	"pipeline_crm_backend/internal/email"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeUserStore struct {
	byEmail map[string]repository.User
	byID    map[uuid.UUID]repository.User
}

func newFakeUserStore(users ...repository.User) *fakeUserStore {
	s := &fakeUserStore{
		byEmail: make(map[string]repository.User),
		byID:    make(map[uuid.UUID]repository.User),
	}
	for _, u := range users {
		s.byEmail[u.Email] = u
		s.byID[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, emailAddr, name, hash, role string) (repository.User, error) {
	if _, exists := s.byEmail[emailAddr]; exists {
		return repository.User{}, repository.ErrDuplicateEmail
	}
	u := repository.User{ID: uuid.New(), Email: emailAddr, Name: name, PasswordHash: hash, Role: role, IsActive: true}
	s.byEmail[emailAddr] = u
	s.byID[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, emailAddr string) (repository.User, error) {
	u, ok := s.byEmail[emailAddr]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) List(context.Context) ([]repository.User, error) { return nil, nil }

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	s.byID[id] = u
	s.byEmail[u.Email] = u
	return nil
}

func (s *fakeUserStore) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (s *fakeUserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

type fakeRefreshStore struct {
	refresh map[string]uuid.UUID
	reset   map[string]uuid.UUID
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{refresh: map[string]uuid.UUID{}, reset: map[string]uuid.UUID{}}
}

func (s *fakeRefreshStore) Save(_ context.Context, hash string, userID uuid.UUID, _ time.Duration) error {
	s.refresh[hash] = userID
	return nil
}

func (s *fakeRefreshStore) Lookup(_ context.Context, hash string) (uuid.UUID, error) {
	id, ok := s.refresh[hash]
	if !ok {
		return uuid.Nil, errors.New("not found")
	}
	return id, nil
}

func (s *fakeRefreshStore) Revoke(_ context.Context, hash string) error {
	delete(s.refresh, hash)
	return nil
}

func (s *fakeRefreshStore) SaveReset(_ context.Context, hash string, userID uuid.UUID, _ time.Duration) error {
	s.reset[hash] = userID
	return nil
}

func (s *fakeRefreshStore) ConsumeReset(_ context.Context, hash string) (uuid.UUID, error) {
	id, ok := s.reset[hash]
	if !ok {
		return uuid.Nil, errors.New("not found")
	}
	delete(s.reset, hash)
	return id, nil
}

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string        { return "test-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return time.Hour }
func (testConfig) GetResetTokenTTL() time.Duration   { return 30 * time.Minute }
func (testConfig) GetAppBaseURL() string             { return "http://localhost:4200" }

func newTestService(users ...repository.User) (*Service, *fakeRefreshStore) {
	tokens := newFakeRefreshStore()
	return New(newFakeUserStore(users...), tokens, testConfig{}, email.NoopSender{}), tokens
}

func testUser(t *testing.T, emailAddr, plain, role string) repository.User {
	t.Helper()
	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return repository.User{ID: uuid.New(), Email: emailAddr, PasswordHash: hash, Role: role, IsActive: true}
}

func TestSignInIssuesAccessTokenWithRoleClaims(t *testing.T) {
	user := testUser(t, "sdr@example.com", "hunter2!", "sdr")
	svc, _ := newTestService(user)

	accessToken, refreshToken, err := svc.SignIn(context.Background(), "sdr@example.com", "hunter2!")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if refreshToken == "" {
		t.Fatal("expected a refresh token")
	}

	parsed, err := jwt.Parse(accessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("access token should parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID.String() {
		t.Errorf("sub = %v, want %v", claims["sub"], user.ID)
	}
	if claims["role"] != "sdr" {
		t.Errorf("role = %v, want sdr", claims["role"])
	}
	if claims["type"] != "access" {
		t.Errorf("type = %v, want access", claims["type"])
	}
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService(testUser(t, "sdr@example.com", "hunter2!", "sdr"))

	_, _, err := svc.SignIn(context.Background(), "sdr@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInRejectsUnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.SignIn(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	user := testUser(t, "closer@example.com", "s3cret!", "closer")
	svc, tokens := newTestService(user)

	_, refreshToken, err := svc.SignIn(context.Background(), "closer@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	_, newRefresh, err := svc.Refresh(context.Background(), refreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if newRefresh == refreshToken {
		t.Error("refresh token should rotate")
	}

	// The old token is revoked.
	if _, _, err := svc.Refresh(context.Background(), refreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for reused token, got %v", err)
	}
	if len(tokens.refresh) != 1 {
		t.Errorf("expected exactly one live refresh token, got %d", len(tokens.refresh))
	}
}

func TestResetPasswordConsumesToken(t *testing.T) {
	user := testUser(t, "sdr@example.com", "oldpass!", "sdr")
	svc, tokens := newTestService(user)

	if err := svc.ForgotPassword(context.Background(), "sdr@example.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}
	if len(tokens.reset) != 1 {
		t.Fatalf("expected one reset token, got %d", len(tokens.reset))
	}

	// Unknown emails are accepted silently.
	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Errorf("unknown email should not error, got %v", err)
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	sdr := access.Actor{ID: uuid.New(), Role: access.RoleSDR}

	_, err := svc.CreateUser(context.Background(), sdr, "new@example.com", "New User", "pass123!", access.RoleCloser)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := access.Actor{ID: uuid.New(), Role: access.RoleAdmin}
	user, err := svc.CreateUser(context.Background(), admin, "new@example.com", "New User", "pass123!", access.RoleCloser)
	if err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if user.Role != "closer" {
		t.Errorf("role = %q, want closer", user.Role)
	}

	_, err = svc.CreateUser(context.Background(), admin, "new@example.com", "Dup", "pass123!", access.RoleCloser)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}
}

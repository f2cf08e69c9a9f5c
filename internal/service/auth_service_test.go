package service

import (
	"context"
	"testing"
	"time"

	"cakeshop/internal/domain"
	"cakeshop/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindAdmin(ctx context.Context) (*domain.User, error) {
	for _, user := range m.users {
		if user.Role == "admin" {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newTestAuthService(userRepo repository.UserRepository, tokenRepo repository.RefreshTokenRepository) AuthService {
	return NewAuthService(userRepo, tokenRepo, "test-secret", 60)
}

func seedUser(t *testing.T, repo *mockUserRepository, email, password, role string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockRefreshTokenRepository()
	service := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	seeded := seedUser(t, userRepo, "admin@banhgathuydung.vn", "admin123", "admin")

	accessToken, refreshToken, user, err := service.Login(ctx, "admin@banhgathuydung.vn", "admin123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatal("login returned the wrong user")
	}
	if refreshToken == "" {
		t.Fatal("login should issue a refresh token")
	}

	claims, err := service.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.UserID != seeded.ID || claims.Role != "admin" || claims.Email != seeded.Email {
		t.Fatalf("claims do not match the user: %+v", claims)
	}
}

func TestProperty_WrongPasswordNeverAuthenticates(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("login rejects any password other than the stored one", prop.ForAll(
		func(password, attempt string) bool {
			if password == attempt {
				return true
			}

			userRepo := newMockUserRepository()
			tokenRepo := newMockRefreshTokenRepository()
			service := newTestAuthService(userRepo, tokenRepo)
			ctx := context.Background()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
			if err != nil {
				return false
			}
			userRepo.users["user@example.com"] = &domain.User{
				ID:           uuid.New(),
				Email:        "user@example.com",
				PasswordHash: string(hash),
				Role:         "admin",
			}

			_, _, _, err = service.Login(ctx, "user@example.com", attempt)
			return err == ErrInvalidCredentials
		},
		gen.RegexMatch(`[A-Za-z0-9]{8,16}`),
		gen.RegexMatch(`[A-Za-z0-9]{8,16}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginUnknownEmail(t *testing.T) {
	service := newTestAuthService(newMockUserRepository(), newMockRefreshTokenRepository())

	_, _, _, err := service.Login(context.Background(), "nobody@example.com", "whatever")
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockRefreshTokenRepository()
	service := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	seedUser(t, userRepo, "admin@banhgathuydung.vn", "admin123", "admin")

	_, refreshToken, _, err := service.Login(ctx, "admin@banhgathuydung.vn", "admin123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	newAccess, err := service.RefreshToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := service.ValidateToken(newAccess); err != nil {
		t.Fatalf("refreshed token failed validation: %v", err)
	}

	// After logout the refresh token is dead.
	if err := service.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := service.RefreshToken(ctx, refreshToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestLogoutUnknownTokenIsIdempotent(t *testing.T) {
	service := newTestAuthService(newMockUserRepository(), newMockRefreshTokenRepository())

	if err := service.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("logging out an unknown token should succeed, got %v", err)
	}
}

func TestRefreshTokenExpired(t *testing.T) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockRefreshTokenRepository()
	service := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	user := seedUser(t, userRepo, "admin@banhgathuydung.vn", "admin123", "admin")

	tokenRepo.tokens["expired"] = &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     "expired",
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	}

	if _, err := service.RefreshToken(ctx, "expired"); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthorizeReVerifiesRoleServerSide(t *testing.T) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockRefreshTokenRepository()
	service := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	seedUser(t, userRepo, "admin@banhgathuydung.vn", "admin123", "admin")
	seedUser(t, userRepo, "shopper@example.com", "password1", "user")

	adminToken, _, _, err := service.Login(ctx, "admin@banhgathuydung.vn", "admin123")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	userToken, _, _, err := service.Login(ctx, "shopper@example.com", "password1")
	if err != nil {
		t.Fatalf("user login failed: %v", err)
	}

	if res := service.Authorize(adminToken, "admin"); res.Status != Authorized {
		t.Fatalf("admin token should be Authorized, got %v", res.Status)
	} else if res.Claims == nil || res.Claims.Role != "admin" {
		t.Fatal("Authorized result should carry the verified claims")
	}

	// The role baked into the signed token decides, not anything the client
	// asserts on its own: a user-role token never reaches admin routes.
	if res := service.Authorize(userToken, "admin"); res.Status != Forbidden {
		t.Fatalf("user token on an admin requirement should be Forbidden, got %v", res.Status)
	}

	if res := service.Authorize("garbage.token.here", "admin"); res.Status != InvalidToken {
		t.Fatalf("a malformed token should be InvalidToken, got %v", res.Status)
	}

	// A token signed with a different secret fails verification outright.
	other := NewAuthService(userRepo, tokenRepo, "other-secret", 60)
	forged, _, _, err := other.Login(ctx, "shopper@example.com", "password1")
	if err != nil {
		t.Fatalf("login against other service failed: %v", err)
	}
	if res := service.Authorize(forged, "admin"); res.Status != InvalidToken {
		t.Fatalf("a forged token should be InvalidToken, got %v", res.Status)
	}
}

func TestBootstrapAdminSeedsOnce(t *testing.T) {
	userRepo := newMockUserRepository()
	service := newTestAuthService(userRepo, newMockRefreshTokenRepository())
	ctx := context.Background()

	admin, err := service.BootstrapAdmin(ctx)
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if admin.Email != DefaultAdminEmail || admin.Role != "admin" {
		t.Fatalf("unexpected bootstrap account: %+v", admin)
	}
	if admin.PasswordHash == DefaultAdminPassword {
		t.Fatal("the default password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(DefaultAdminPassword)); err != nil {
		t.Fatalf("stored hash does not match the default password: %v", err)
	}

	// The seeded account can log in.
	if _, _, _, err := service.Login(ctx, DefaultAdminEmail, DefaultAdminPassword); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}

	// A second bootstrap reports the existing account instead of creating
	// another.
	existing, err := service.BootstrapAdmin(ctx)
	if err != ErrAdminExists {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}
	if existing == nil || existing.ID != admin.ID {
		t.Fatal("second bootstrap should return the existing admin")
	}
}

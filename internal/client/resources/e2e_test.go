package resources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/morlov/merchant-admin/internal/app/apiapp"
	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/client/guard"
	"github.com/morlov/merchant-admin/internal/client/session"
	"github.com/morlov/merchant-admin/internal/config"
	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/model"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	redrepo "github.com/morlov/merchant-admin/internal/repo/redis"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
	dashboardsvc "github.com/morlov/merchant-admin/internal/services/dashboard"
	merchantssvc "github.com/morlov/merchant-admin/internal/services/merchants"
	settingssvc "github.com/morlov/merchant-admin/internal/services/settings"
	userssvc "github.com/morlov/merchant-admin/internal/services/users"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
)

// startTestAPI runs the real router and services over in-memory stores.
func startTestAPI(t *testing.T, seedPassword string) (*httptest.Server, *memUserStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	hash, err := authsvc.HashPassword(seedPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := &memUserStore{users: []model.User{{
		ID:           1,
		PublicID:     "pub-1",
		Name:         "Admin",
		Email:        "admin@example.com",
		Role:         enums.RoleAdmin,
		PasswordHash: hash,
	}}}
	merchants := &memMerchantStore{}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	authService := authsvc.NewService(
		jwtManager,
		redrepo.NewSessionRepo(redisClient),
		users,
		redrepo.NewResetRepo(redisClient),
		authsvc.Config{RefreshTTL: 45 * 24 * time.Hour},
	)

	r := chi.NewRouter()
	apiapp.RegisterRoutes(r, apiapp.Dependencies{
		AuthService:      authService,
		UserService:      userssvc.NewService(users),
		MerchantService:  merchantssvc.NewService(merchants),
		DashboardService: dashboardsvc.NewService(users, merchants),
		SettingsService:  settingssvc.NewService(users, nil),
		Logger:           zap.NewNop(),
		Config:           config.Default(),
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, users
}

func newTestClient(t *testing.T, baseURL string) (*gateway.Gateway, *session.Store) {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize session: %v", err)
	}
	return gateway.New(gateway.Config{BaseURL: baseURL, Timeout: 5 * time.Second}, store, nil), store
}

func TestLoginThenGuardRedirectsAdminAwayFromSuperAdminView(t *testing.T) {
	server, _ := startTestAPI(t, "secret-password")
	gw, store := newTestClient(t, server.URL)
	auth := NewAuthClient(gw, store)

	identity, err := auth.Login(context.Background(), "admin@example.com", "secret-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if identity.Role != enums.RoleAdmin {
		t.Fatalf("unexpected role: %q", identity.Role)
	}
	if !store.IsAuthenticated() {
		t.Fatalf("session must be active after login")
	}

	// The users screen is super_admin only; an admin lands on the dashboard.
	if got := guard.Decide(store, []enums.Role{enums.RoleSuperAdmin}); got != guard.OutcomeRedirectDefault {
		t.Fatalf("expected redirect to default, got %v", got)
	}
	if got := guard.Decide(store, nil); got != guard.OutcomeAllow {
		t.Fatalf("expected dashboard access, got %v", got)
	}
}

func TestAdminSeesDashboardButNotUsersList(t *testing.T) {
	server, _ := startTestAPI(t, "secret-password")
	gw, store := newTestClient(t, server.URL)
	auth := NewAuthClient(gw, store)

	if _, err := auth.Login(context.Background(), "admin@example.com", "secret-password"); err != nil {
		t.Fatalf("login: %v", err)
	}

	summary, err := NewDashboardClient(gw).Summary(context.Background())
	if err != nil {
		t.Fatalf("dashboard summary: %v", err)
	}
	if summary.TotalUsers != 0 {
		t.Fatalf("admin summary must not carry the user count, got %d", summary.TotalUsers)
	}

	_, err = NewUsersClient(gw).List(context.Background(), 1, 20)
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected 403 from the users list, got %v", err)
	}
	if !store.IsAuthenticated() {
		t.Fatalf("a 403 must not clear the session")
	}
}

func TestStaleAccessTokenIsRefreshedTransparently(t *testing.T) {
	server, _ := startTestAPI(t, "secret-password")
	gw, store := newTestClient(t, server.URL)
	auth := NewAuthClient(gw, store)

	if _, err := auth.Login(context.Background(), "admin@example.com", "secret-password"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Corrupt only the in-flight access token; the refresh token stays valid.
	identity, _ := store.Identity()
	if err := store.Commit(identity, "garbage-access-token", ""); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := NewDashboardClient(gw).Summary(context.Background()); err != nil {
		t.Fatalf("summary after token rot: %v", err)
	}
	if store.AccessToken() == "garbage-access-token" {
		t.Fatalf("access token was not refreshed")
	}
	if !store.IsAuthenticated() {
		t.Fatalf("session must survive a transparent refresh")
	}
}

func TestLogoutClearsSessionAndInvalidatesRefresh(t *testing.T) {
	server, _ := startTestAPI(t, "secret-password")
	gw, store := newTestClient(t, server.URL)
	auth := NewAuthClient(gw, store)

	if _, err := auth.Login(context.Background(), "admin@example.com", "secret-password"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := auth.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("session must be absent after logout")
	}

	err := gw.Do(context.Background(), http.MethodGet, "/dashboard", nil, nil)
	if !errors.Is(err, gateway.ErrAuthentication) {
		t.Fatalf("expected authentication failure after logout, got %v", err)
	}
	reason, ok := gw.LastRedirect()
	if !ok || reason != gateway.ReasonNotLoggedIn {
		t.Fatalf("unexpected redirect reason: %q ok=%v", reason, ok)
	}
}

func TestSettingsProfileRoundTrip(t *testing.T) {
	server, _ := startTestAPI(t, "secret-password")
	gw, store := newTestClient(t, server.URL)
	auth := NewAuthClient(gw, store)

	if _, err := auth.Login(context.Background(), "admin@example.com", "secret-password"); err != nil {
		t.Fatalf("login: %v", err)
	}

	settings := NewSettingsClient(gw)
	updated, err := settings.UpdateProfile(context.Background(), dto.UpdateProfileRequest{
		Name:  "Renamed Admin",
		Email: "admin@example.com",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Renamed Admin" {
		t.Fatalf("unexpected profile name: %q", updated.Name)
	}

	profile, err := settings.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.User.Name != "Renamed Admin" {
		t.Fatalf("profile not persisted: %q", profile.User.Name)
	}
}

type memUserStore struct {
	users  []model.User
	nextID int64
}

func (s *memUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return model.User{}, pgrepo.ErrDuplicate
		}
	}
	s.nextID++
	user.ID = 100 + s.nextID
	s.users = append(s.users, user)
	return user, nil
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (model.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrNotFound
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrNotFound
}

func (s *memUserStore) List(_ context.Context, limit, offset int) ([]model.User, error) {
	if offset >= len(s.users) {
		return []model.User{}, nil
	}
	end := offset + limit
	if end > len(s.users) {
		end = len(s.users)
	}
	return s.users[offset:end], nil
}

func (s *memUserStore) Update(_ context.Context, user model.User) (model.User, error) {
	for i, existing := range s.users {
		if existing.ID == user.ID {
			user.PublicID = existing.PublicID
			user.PasswordHash = existing.PasswordHash
			user.AvatarKey = existing.AvatarKey
			s.users[i] = user
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrNotFound
}

func (s *memUserStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].PasswordHash = passwordHash
			return nil
		}
	}
	return pgrepo.ErrNotFound
}

func (s *memUserStore) UpdateAvatar(_ context.Context, id int64, avatarKey string) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].AvatarKey = avatarKey
			return nil
		}
	}
	return pgrepo.ErrNotFound
}

func (s *memUserStore) Delete(_ context.Context, id int64) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrNotFound
}

func (s *memUserStore) Count(context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

type memMerchantStore struct {
	merchants []model.Merchant
	nextID    int64
}

func (s *memMerchantStore) Create(_ context.Context, merchant model.Merchant) (model.Merchant, error) {
	s.nextID++
	merchant.ID = s.nextID
	merchant.CreatedAt = time.Now()
	s.merchants = append(s.merchants, merchant)
	return merchant, nil
}

func (s *memMerchantStore) GetByID(_ context.Context, id int64) (model.Merchant, error) {
	for _, merchant := range s.merchants {
		if merchant.ID == id {
			return merchant, nil
		}
	}
	return model.Merchant{}, pgrepo.ErrNotFound
}

func (s *memMerchantStore) GetByOwner(_ context.Context, ownerUserID int64) (model.Merchant, error) {
	for _, merchant := range s.merchants {
		if merchant.OwnerUserID == ownerUserID {
			return merchant, nil
		}
	}
	return model.Merchant{}, pgrepo.ErrNotFound
}

func (s *memMerchantStore) List(_ context.Context, limit, offset int) ([]model.Merchant, error) {
	if offset >= len(s.merchants) {
		return []model.Merchant{}, nil
	}
	end := offset + limit
	if end > len(s.merchants) {
		end = len(s.merchants)
	}
	return s.merchants[offset:end], nil
}

func (s *memMerchantStore) Update(_ context.Context, merchant model.Merchant) (model.Merchant, error) {
	for i, existing := range s.merchants {
		if existing.ID == merchant.ID {
			merchant.PublicID = existing.PublicID
			merchant.OwnerUserID = existing.OwnerUserID
			merchant.CreatedAt = existing.CreatedAt
			s.merchants[i] = merchant
			return merchant, nil
		}
	}
	return model.Merchant{}, pgrepo.ErrNotFound
}

func (s *memMerchantStore) Delete(_ context.Context, id int64) error {
	for i := range s.merchants {
		if s.merchants[i].ID == id {
			s.merchants = append(s.merchants[:i], s.merchants[i+1:]...)
			return nil
		}
	}
	return pgrepo.ErrNotFound
}

func (s *memMerchantStore) Count(context.Context) (int64, error) {
	return int64(len(s.merchants)), nil
}

func (s *memMerchantStore) CountByStatus(_ context.Context, status enums.MerchantStatus) (int64, error) {
	var n int64
	for _, merchant := range s.merchants {
		if merchant.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *memMerchantStore) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, merchant := range s.merchants {
		if merchant.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

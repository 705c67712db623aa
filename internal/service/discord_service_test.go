package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/auth"
	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository/postgres"
	"github.com/harukisan/fixed-points-backend/internal/service"
	"github.com/harukisan/fixed-points-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discordStub fakes the provider's token and profile endpoints.
type discordStub struct {
	mu          sync.Mutex
	profile     map[string]interface{}
	failToken   bool
	failProfile bool
	revokeCode  int
	server      *httptest.Server
}

func newDiscordStub(t *testing.T) *discordStub {
	t.Helper()

	stub := &discordStub{
		profile: map[string]interface{}{
			"id":       "123456789012345678",
			"username": "discorduser",
			"email":    "discorduser@example.com",
			"avatar":   "abcdef",
		},
		revokeCode: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		fail := stub.failToken
		stub.mu.Unlock()
		if fail {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "provider-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		fail := stub.failProfile
		profile := stub.profile
		stub.mu.Unlock()
		if fail {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		code := stub.revokeCode
		stub.mu.Unlock()
		w.WriteHeader(code)
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *discordStub) setProfile(id, username, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = map[string]interface{}{
		"id":       id,
		"username": username,
		"email":    email,
		"avatar":   "",
	}
}

type discordFixture struct {
	discord *service.DiscordService
	auth    *service.AuthService
	states  auth.StateStore
	stub    *discordStub
	db      *testutil.TestDB
}

func newDiscordFixture(t *testing.T) *discordFixture {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)

	cfg := testutil.TestConfig(t)
	cfg.DiscordClientID = "test-client-id"
	cfg.DiscordClientSecret = "test-client-secret"

	authService := service.NewAuthService(repos.User, repos.AuthToken, cfg)
	states := auth.NewMemoryStateStore(time.Minute)
	discordService := service.NewDiscordService(repos.User, authService, states, cfg, testutil.TestLogger())

	stub := newDiscordStub(t)
	discordService.SetProviderURLs(stub.server.URL+"/token", stub.server.URL+"/users/@me", stub.server.URL+"/revoke")

	return &discordFixture{
		discord: discordService,
		auth:    authService,
		states:  states,
		stub:    stub,
		db:      testDB,
	}
}

func TestDiscordService_NotConfigured(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig(t)
	authService := service.NewAuthService(repos.User, repos.AuthToken, cfg)
	states := auth.NewMemoryStateStore(time.Minute)
	discordService := service.NewDiscordService(repos.User, authService, states, cfg, testutil.TestLogger())
	ctx := context.Background()

	_, _, err := discordService.StartLogin()
	assert.ErrorIs(t, err, service.ErrProviderNotConfigured)

	_, err = discordService.CompleteLogin(ctx, "code", "state")
	assert.ErrorIs(t, err, service.ErrProviderNotConfigured)

	err = discordService.Revoke(ctx, "token")
	assert.ErrorIs(t, err, service.ErrProviderNotConfigured)
}

func TestDiscordService_StartLogin(t *testing.T) {
	f := newDiscordFixture(t)

	authURL, state, err := f.discord.StartLogin()
	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "client_id=test-client-id")

	// Each start mints a distinct state.
	_, state2, err := f.discord.StartLogin()
	require.NoError(t, err)
	assert.NotEqual(t, state, state2)
}

func TestDiscordService_CompleteLogin_CreatesUser(t *testing.T) {
	f := newDiscordFixture(t)
	ctx := context.Background()

	_, state, err := f.discord.StartLogin()
	require.NoError(t, err)

	result, err := f.discord.CompleteLogin(ctx, "auth-code", state)
	require.NoError(t, err)

	user := result.User
	assert.Equal(t, "discorduser", user.Username)
	assert.Equal(t, domain.AuthProviderDiscord, user.AuthProvider)
	require.NotNil(t, user.DiscordID)
	assert.Equal(t, "123456789012345678", *user.DiscordID)
	assert.Nil(t, user.PasswordHash)
	require.NotNil(t, user.AvatarURL)
	assert.Contains(t, *user.AvatarURL, "cdn.discordapp.com")

	// The issued pair is the app's own: the access token resolves back to
	// the user and the refresh token rotates.
	got, err := f.auth.VerifyAccess(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.auth.Refresh(ctx, result.RefreshToken)
	require.NoError(t, err)
}

func TestDiscordService_StateIsSingleUse(t *testing.T) {
	f := newDiscordFixture(t)
	ctx := context.Background()

	_, state, err := f.discord.StartLogin()
	require.NoError(t, err)

	_, err = f.discord.CompleteLogin(ctx, "auth-code", state)
	require.NoError(t, err)

	// Replaying the same state must fail before any provider call.
	_, err = f.discord.CompleteLogin(ctx, "auth-code", state)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestDiscordService_UnknownState(t *testing.T) {
	f := newDiscordFixture(t)

	_, err := f.discord.CompleteLogin(context.Background(), "auth-code", "never-issued")
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestDiscordService_ReturningUser(t *testing.T) {
	f := newDiscordFixture(t)
	ctx := context.Background()

	_, state, err := f.discord.StartLogin()
	require.NoError(t, err)
	first, err := f.discord.CompleteLogin(ctx, "auth-code", state)
	require.NoError(t, err)

	// Same Discord account comes back with a changed handle.
	f.stub.setProfile("123456789012345678", "renameduser", "renamed@example.com")

	_, state, err = f.discord.StartLogin()
	require.NoError(t, err)
	second, err := f.discord.CompleteLogin(ctx, "auth-code", state)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "renameduser", second.User.Username)
	require.NotNil(t, second.User.Email)
	assert.Equal(t, "renamed@example.com", *second.User.Email)
}

func TestDiscordService_UsernameCollision(t *testing.T) {
	f := newDiscordFixture(t)
	ctx := context.Background()

	// A local user already owns the handle the Discord profile carries.
	testutil.NewUserBuilder().
		WithUsername("popular").
		Build(t, f.db.DB)

	f.stub.setProfile("987654321098765432", "popular", "popular@example.com")

	_, state, err := f.discord.StartLogin()
	require.NoError(t, err)
	result, err := f.discord.CompleteLogin(ctx, "auth-code", state)
	require.NoError(t, err)

	// The suffix is derived from the Discord ID, so the same collision
	// always lands on the same name.
	assert.Equal(t, "popular_98765432", result.User.Username)

	// A second login keeps the disambiguated handle stable.
	_, state, err = f.discord.StartLogin()
	require.NoError(t, err)
	again, err := f.discord.CompleteLogin(ctx, "auth-code", state)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
	assert.Equal(t, "popular_98765432", again.User.Username)
}

func TestDiscordService_ExchangeFailure(t *testing.T) {
	f := newDiscordFixture(t)
	f.stub.failToken = true

	_, state, err := f.discord.StartLogin()
	require.NoError(t, err)

	_, err = f.discord.CompleteLogin(context.Background(), "bad-code", state)
	assert.ErrorIs(t, err, service.ErrProviderExchangeFailed)

	// The state was consumed by the failed attempt.
	_, err = f.discord.CompleteLogin(context.Background(), "bad-code", state)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestDiscordService_ProfileFailure(t *testing.T) {
	f := newDiscordFixture(t)
	f.stub.failProfile = true

	_, state, err := f.discord.StartLogin()
	require.NoError(t, err)

	_, err = f.discord.CompleteLogin(context.Background(), "auth-code", state)
	assert.ErrorIs(t, err, service.ErrProviderProfileFailed)
}

func TestDiscordService_Revoke(t *testing.T) {
	f := newDiscordFixture(t)
	ctx := context.Background()

	require.NoError(t, f.discord.Revoke(ctx, "provider-token"))

	f.stub.revokeCode = http.StatusUnauthorized
	assert.ErrorIs(t, f.discord.Revoke(ctx, "provider-token"), service.ErrProviderRevokeFailed)
}

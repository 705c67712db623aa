package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/auth"
	"github.com/harukisan/fixed-points-backend/internal/config"
	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"github.com/rs/xid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	ErrProviderNotConfigured  = errors.New("discord oauth is not configured")
	ErrInvalidState           = errors.New("invalid oauth state")
	ErrProviderExchangeFailed = errors.New("failed to exchange code with discord")
	ErrProviderProfileFailed  = errors.New("failed to fetch discord profile")
	ErrProviderRevokeFailed   = errors.New("failed to revoke discord token")
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

const (
	discordUserURL   = "https://discord.com/api/users/@me"
	discordRevokeURL = "https://discord.com/api/oauth2/token/revoke"
	discordCDNBase   = "https://cdn.discordapp.com"
)

// discordProfile is the portion of the Discord /users/@me response we use.
type discordProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

type DiscordService struct {
	userRepo    repository.UserRepository
	authService *AuthService
	states      auth.StateStore
	cfg         *config.Config
	oauth       *oauth2.Config // nil when Discord credentials are absent
	userURL     string
	revokeURL   string
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewDiscordService(
	userRepo repository.UserRepository,
	authService *AuthService,
	states auth.StateStore,
	cfg *config.Config,
	logger *slog.Logger,
) *DiscordService {
	s := &DiscordService{
		userRepo:    userRepo,
		authService: authService,
		states:      states,
		cfg:         cfg,
		userURL:     discordUserURL,
		revokeURL:   discordRevokeURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}

	if cfg.DiscordConfigured() {
		s.oauth = &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify", "email"},
			Endpoint:     discordEndpoint,
		}
	}

	return s
}

// StartLogin mints a single-use state token and returns the Discord
// authorization URL embedding it.
func (s *DiscordService) StartLogin() (authURL string, state string, err error) {
	if s.oauth == nil {
		return "", "", ErrProviderNotConfigured
	}

	state = xid.New().String()
	s.states.Put(state)

	return s.oauth.AuthCodeURL(state), state, nil
}

// CompleteLogin handles the provider redirect: it consumes the state,
// exchanges the code server-to-server, fetches the Discord profile and
// reconciles it with the user table, then issues the app's own tokens.
func (s *DiscordService) CompleteLogin(ctx context.Context, code, state string) (*AuthResult, error) {
	if s.oauth == nil {
		return nil, ErrProviderNotConfigured
	}

	// Consume before anything else so a replayed state never reaches the
	// provider exchange.
	if !s.states.Consume(state) {
		return nil, ErrInvalidState
	}

	// Bound the outbound calls; a hung provider fails the callback instead
	// of leaving it pending.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("discord code exchange failed", slog.String("error", err.Error()))
		return nil, ErrProviderExchangeFailed
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		s.logger.Error("discord profile fetch failed", slog.String("error", err.Error()))
		return nil, ErrProviderProfileFailed
	}

	user, err := s.reconcile(ctx, profile)
	if err != nil {
		return nil, err
	}

	return s.authService.IssueTokens(ctx, user)
}

func (s *DiscordService) fetchProfile(ctx context.Context, token *oauth2.Token) (*discordProfile, error) {
	client := s.oauth.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord /users/@me returned status %d", resp.StatusCode)
	}

	var profile discordProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, errors.New("discord returned an empty user id")
	}

	return &profile, nil
}

// reconcile maps a Discord profile onto the user table: an existing user
// (matched by Discord ID) has its mutable fields refreshed, a new profile
// gets a fresh federated account. Username collisions with other users are
// resolved with a deterministic suffix so repeated logins converge on the
// same name.
func (s *DiscordService) reconcile(ctx context.Context, profile *discordProfile) (*domain.User, error) {
	var avatarURL *string
	if profile.Avatar != "" {
		u := fmt.Sprintf("%s/avatars/%s/%s.png", discordCDNBase, profile.ID, profile.Avatar)
		avatarURL = &u
	}

	var email *string
	if profile.Email != "" {
		email = &profile.Email
	}

	existing, err := s.userRepo.GetByDiscordID(ctx, profile.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		username := profile.Username
		taken, err := s.userRepo.UsernameTaken(ctx, username, existing.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			username = disambiguateUsername(username, profile.ID)
		}

		existing.Username = username
		existing.Email = email
		existing.DiscordUsername = &profile.Username
		existing.AvatarURL = avatarURL
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	username := profile.Username
	taken, err := s.userRepo.UsernameTaken(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		username = disambiguateUsername(username, profile.ID)
	}

	discordID := profile.ID
	user := &domain.User{
		Username:        username,
		Email:           email,
		DiscordID:       &discordID,
		DiscordUsername: &profile.Username,
		AvatarURL:       avatarURL,
		AuthProvider:    domain.AuthProviderDiscord,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("created user from discord profile",
		slog.Uint64("userID", uint64(user.ID)),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Revoke asks Discord to invalidate a provider-issued token. This is
// independent of the app's own refresh records; a full logout needs both.
func (s *DiscordService) Revoke(ctx context.Context, providerToken string) error {
	if s.oauth == nil {
		return ErrProviderNotConfigured
	}

	form := url.Values{}
	form.Set("client_id", s.cfg.DiscordClientID)
	form.Set("client_secret", s.cfg.DiscordClientSecret)
	form.Set("token", providerToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ErrProviderRevokeFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrProviderRevokeFailed
	}
	return nil
}

// disambiguateUsername appends a fixed-length suffix derived from the
// Discord ID, so the same collision always resolves to the same name.
func disambiguateUsername(username, discordID string) string {
	suffix := discordID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return username + "_" + suffix
}

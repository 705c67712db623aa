package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/harukisan/fixed-points-backend/internal/config"
	"github.com/harukisan/fixed-points-backend/internal/domain"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("username or email already registered")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both access and refresh tokens. TokenType
// discriminates the two; callers must check it at every verification site.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// invalidPasswordHash is compared against when a login targets an unknown
// email, so that "no such account" and "wrong password" take the same time.
var invalidPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("fixed-points-no-such-user"), bcrypt.DefaultCost)

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.AuthTokenRepository
	cfg       *config.Config
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.AuthTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if len(input.Username) < 3 || len(input.Username) > 50 {
		return nil, fmt.Errorf("%w: username must be 3-50 characters", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	hash := string(hashedPassword)
	user := &domain.User{
		Username:     input.Username,
		Email:        &input.Email,
		PasswordHash: &hash,
		AuthProvider: domain.AuthProviderEmail,
	}

	// The unique indexes on username and email are the authority here; two
	// racing registrations cannot both pass them.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	return user, nil
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmailAndProvider(ctx, input.Email, domain.AuthProviderEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a comparable amount of work so an unknown email is not
			// distinguishable from a wrong password by response time.
			bcrypt.CompareHashAndPassword(invalidPasswordHash, []byte(input.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		bcrypt.CompareHashAndPassword(invalidPasswordHash, []byte(input.Password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.IssueTokens(ctx, user)
}

// IssueTokens creates an access/refresh token pair for an authenticated
// user and persists a hash of the refresh token for later revocation. Only
// the raw tokens are returned to the caller; they are never stored.
func (s *AuthService) IssueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.signToken(user, TokenTypeAccess, s.cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signToken(user, TokenTypeRefresh, s.cfg.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}

	record := &domain.AuthToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL()),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifyAccess resolves a bearer token to its user. It rejects refresh
// tokens: only access-typed claims pass, even though both decode.
func (s *AuthService) VerifyAccess(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.decodeToken(tokenString)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh record is deleted, so each refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.decodeToken(refreshToken)
	if err != nil || claims.TokenType != TokenTypeRefresh {
		return nil, ErrUnauthenticated
	}

	record, err := s.tokenRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if err := s.tokenRepo.DeleteByTokenHash(ctx, record.TokenHash); err != nil {
		return nil, err
	}

	return s.IssueTokens(ctx, user)
}

// Logout revokes every refresh token issued to the user. Access tokens
// remain valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.tokenRepo.DeleteByUserID(ctx, userID)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) signToken(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) decodeToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

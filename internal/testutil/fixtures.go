package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/harukisan/fixed-points-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username  string
	email     string
	password  string
	discordID string
	provider  domain.AuthProvider
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("test_%s@example.com", suffix),
		password: "testpassword123",
		provider: domain.AuthProviderEmail,
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithDiscordID marks the user as a federated Discord account
func (b *UserBuilder) WithDiscordID(discordID string) *UserBuilder {
	b.discordID = discordID
	b.provider = domain.AuthProviderDiscord
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		Username:     b.username,
		Email:        &b.email,
		AuthProvider: b.provider,
	}

	if b.discordID != "" {
		user.DiscordID = &b.discordID
		user.DiscordUsername = &b.username
	} else {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		hash := string(hashedPassword)
		user.PasswordHash = &hash
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// FixedPointBuilder creates test fixed points with a builder pattern
type FixedPointBuilder struct {
	owner       *domain.User
	title       string
	characterID string
	mapID       string
	steps       int
}

// NewFixedPointBuilder creates a new FixedPointBuilder with default values
func NewFixedPointBuilder() *FixedPointBuilder {
	return &FixedPointBuilder{
		title:       "Viper snake bite B site",
		characterID: "viper",
		mapID:       "bind",
		steps:       2,
	}
}

// WithOwner sets the owning user
func (b *FixedPointBuilder) WithOwner(user *domain.User) *FixedPointBuilder {
	b.owner = user
	return b
}

// WithTitle sets the title
func (b *FixedPointBuilder) WithTitle(title string) *FixedPointBuilder {
	b.title = title
	return b
}

// WithCharacter sets the character ID
func (b *FixedPointBuilder) WithCharacter(characterID string) *FixedPointBuilder {
	b.characterID = characterID
	return b
}

// WithMap sets the map ID
func (b *FixedPointBuilder) WithMap(mapID string) *FixedPointBuilder {
	b.mapID = mapID
	return b
}

// WithSteps sets how many steps are attached
func (b *FixedPointBuilder) WithSteps(count int) *FixedPointBuilder {
	b.steps = count
	return b
}

// Build creates the fixed point in the database
func (b *FixedPointBuilder) Build(t *testing.T, db *gorm.DB) *domain.FixedPoint {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	fp := &domain.FixedPoint{
		UserID:      b.owner.ID,
		Title:       b.title,
		CharacterID: b.characterID,
		MapID:       b.mapID,
	}
	for i := 0; i < b.steps; i++ {
		desc := fmt.Sprintf("Step %d", i+1)
		x := 0.25 * float64(i+1)
		y := 0.5
		fp.Steps = append(fp.Steps, domain.FixedPointStep{
			StepOrder:   i + 1,
			Description: &desc,
			PositionX:   &x,
			PositionY:   &y,
		})
	}

	if err := db.Create(fp).Error; err != nil {
		t.Fatalf("failed to create fixed point: %v", err)
	}

	return fp
}

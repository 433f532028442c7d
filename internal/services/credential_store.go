package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/pkg/utils"
	"github.com/google/uuid"
)

const (
	resetTokenBytes    = 20
	resetTokenLifetime = time.Hour
)

// UserRepository is the persistence the credential store and follow service need.
// MongoUserStore is the production implementation.
type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string, withSecret bool) (*models.User, error)
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	FindPublicByUIDs(ctx context.Context, uids []string) ([]models.PublicUser, error)
	SetResetToken(ctx context.Context, uid, tokenHash string, expire time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error)
	UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (*models.User, error)
}

// CredentialStore owns password hashing and the reset-token lifecycle.
type CredentialStore struct {
	users UserRepository
	now   func() time.Time
}

func NewCredentialStore(users UserRepository) *CredentialStore {
	return &CredentialStore{users: users, now: time.Now}
}

// Create hashes rawPassword and persists a new user. The returned record
// still carries the hash; callers project it away before responding.
func (c *CredentialStore) Create(ctx context.Context, email, rawPassword, displayName string) (*models.User, error) {
	existing, err := c.users.FindByEmail(ctx, email, false)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		return nil, unexpected("Registration failed", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(rawPassword)
	if err != nil {
		return nil, unexpected("Registration failed", err)
	}

	if displayName == "" {
		displayName = utils.DefaultDisplayName(email)
	}
	now := c.now().UTC()
	user := &models.User{
		UID:         uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Password:    hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.users.Insert(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, unexpected("Registration failed", err)
	}
	return user, nil
}

// Import persists a user migrated from another identity provider. The uid is
// kept and the password is a random secret nobody knows.
func (c *CredentialStore) Import(ctx context.Context, user *models.User) error {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	hash, err := utils.HashPassword(hex.EncodeToString(secret))
	if err != nil {
		return err
	}
	if user.UID == "" {
		user.UID = uuid.NewString()
	}
	if user.DisplayName == "" {
		user.DisplayName = utils.DefaultDisplayName(user.Email)
	}
	now := c.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Password = hash
	return c.users.Insert(ctx, user)
}

func (c *CredentialStore) FindByEmail(ctx context.Context, email string, includeSecret bool) (*models.User, error) {
	return c.users.FindByEmail(ctx, email, includeSecret)
}

// VerifyPassword compares raw against the stored hash. A record loaded without
// its secret never verifies.
func (c *CredentialStore) VerifyPassword(user *models.User, raw string) bool {
	if user == nil || user.Password == "" {
		return false
	}
	ok, err := utils.VerifyPassword(raw, user.Password)
	return err == nil && ok
}

// IssueResetToken stores the digest of a fresh token valid for one hour and
// returns the plaintext for out-of-band delivery.
func (c *CredentialStore) IssueResetToken(ctx context.Context, user *models.User) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	expire := c.now().Add(resetTokenLifetime).UTC()
	if err := c.users.SetResetToken(ctx, user.UID, utils.HashToken(token), expire); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken sets newPassword on the holder of an unexpired token and
// clears the reset fields.
func (c *CredentialStore) ConsumeResetToken(ctx context.Context, token, newPassword string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, unexpected("Failed to reset password", err)
	}

	user, err := c.users.ConsumeResetToken(ctx, utils.HashToken(token), hash, c.now().UTC())
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, unexpected("Failed to reset password", err)
	}
	return user, nil
}

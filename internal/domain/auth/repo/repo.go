package repo

import (
	"context"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"time"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error

	ConfirmEmail(ctx context.Context, email string) error

	UpdatePassword(ctx context.Context, email, passwordHash string) (model.User, error)

	UpdateAvatar(ctx context.Context, email string, url *string) (model.User, error)
}

type ContactRepo interface {
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Contact, error)

	Get(ctx context.Context, userID uuid.UUID, id uint) (model.Contact, error)

	Create(ctx context.Context, c model.Contact) (model.Contact, error)

	Update(ctx context.Context, userID uuid.UUID, id uint, c model.Contact) (model.Contact, error)

	Delete(ctx context.Context, userID uuid.UUID, id uint) (model.Contact, error)

	Search(ctx context.Context, userID uuid.UUID, f model.ContactFilter) ([]model.Contact, error)

	All(ctx context.Context, userID uuid.UUID) ([]model.Contact, error)
}

// Cache is the token cache: short-lived reset tokens and user snapshots.
// Get returns ErrNotFound from the errors package on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// Mailer dispatches templated messages. Callers treat it as fire-and-forget.
type Mailer interface {
	SendVerification(ctx context.Context, email, username, host, token string) error

	SendPasswordReset(ctx context.Context, email, username, host, token string) error
}

type AvatarStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (url string, err error)
}

type AvatarLookup interface {
	URL(email string) (string, error)
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"savingz.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	// Upsert creates the user when firebaseId is unknown and returns the stored row either way
	Upsert(ctx context.Context, user *entities.User) (*entities.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByFirebaseID(ctx context.Context, firebaseID string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in entities.UpdateProfileInput) error
	UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error
	// UpdateProgress persists xp, level and streak fields; it returns
	// ErrConflict when the stored xp no longer equals expectedXP.
	UpdateProgress(ctx context.Context, user *entities.User, expectedXP int64) error
	UpdateRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	ListPushTokens(ctx context.Context) ([]string, error)
	// ResetLapsedStreaks zeroes streaks whose last deposit is before cutoff
	ResetLapsedStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/infrastructure/models"
	"savingz.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user unless firebase_id already exists, then returns the stored row
func (r *UserRepository) Upsert(ctx context.Context, user *entities.User) (*entities.User, error) {
	now := time.Now().UTC()
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	m := toUserModel(user)
	m.CreatedAt = now
	m.UpdatedAt = now

	err := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "firebase_id"}}, DoNothing: true}).
		Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.GetByFirebaseID(ctx, user.FirebaseID)
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByFirebaseID gets a user by the identity provider's uid
func (r *UserRepository) GetByFirebaseID(ctx context.Context, firebaseID string) (*entities.User, error) {
	return r.first(ctx, "firebase_id = ?", firebaseID)
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *UserRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// UpdateProfile writes only the supplied name fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, in entities.UpdateProfileInput) error {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if in.FirstName != nil {
		updates["first_name"] = nullableString(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = nullableString(*in.LastName)
	}
	return r.update(ctx, id, updates)
}

// UpdatePushToken stores the device token; an empty token clears it
func (r *UserRepository) UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.update(ctx, id, map[string]interface{}{
		"push_token": nullableString(token),
		"updated_at": time.Now().UTC(),
	})
}

// UpdateRole sets the user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	return r.update(ctx, id, map[string]interface{}{
		"role":       string(role),
		"updated_at": time.Now().UTC(),
	})
}

func (r *UserRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateProgress persists the gamification fields guarded by the previous xp
func (r *UserRepository) UpdateProgress(ctx context.Context, user *entities.User, expectedXP int64) error {
	var lastSaved *time.Time
	if user.LastSavedDate.Valid {
		t := user.LastSavedDate.Time.UTC()
		lastSaved = &t
	}
	result := GetDB(ctx, r.db).Model(&models.User{}).
		Where("id = ? AND xp = ?", user.ID, expectedXP).
		Updates(map[string]interface{}{
			"xp":              user.XP,
			"level":           user.Level,
			"streak_count":    user.StreakCount,
			"last_saved_date": lastSaved,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, user.ID); err != nil {
			return err
		}
		return domainerrors.ErrConflict
	}
	return nil
}

// ListIDs returns every user id
func (r *UserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := GetDB(ctx, r.db).Model(&models.User{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPushTokens returns the distinct registered push tokens
func (r *UserRepository) ListPushTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("push_token IS NOT NULL AND push_token <> ''").
		Distinct("push_token").
		Pluck("push_token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// ResetLapsedStreaks zeroes streaks of users whose last deposit is before cutoff
func (r *UserRepository) ResetLapsedStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.User{}).
		Where("streak_count > 0 AND (last_saved_date IS NULL OR last_saved_date < ?)", cutoff.UTC()).
		Updates(map[string]interface{}{
			"streak_count": 0,
			"updated_at":   time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func toUserModel(u *entities.User) *models.User {
	return &models.User{
		ID:            u.ID,
		FirebaseID:    u.FirebaseID,
		Email:         u.Email,
		FirstName:     u.FirstName.Ptr(),
		LastName:      u.LastName.Ptr(),
		Role:          string(u.Role),
		XP:            u.XP,
		Level:         u.Level,
		StreakCount:   u.StreakCount,
		LastSavedDate: u.LastSavedDate.Ptr(),
		PushToken:     u.PushToken.Ptr(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:            m.ID,
		FirebaseID:    m.FirebaseID,
		Email:         m.Email,
		FirstName:     null.StringFromPtr(m.FirstName),
		LastName:      null.StringFromPtr(m.LastName),
		Role:          entities.UserRole(m.Role),
		XP:            m.XP,
		Level:         m.Level,
		StreakCount:   m.StreakCount,
		LastSavedDate: null.TimeFromPtr(m.LastSavedDate),
		PushToken:     null.StringFromPtr(m.PushToken),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

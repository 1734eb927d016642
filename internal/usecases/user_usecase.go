package usecases

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/domain/repositories"
	"savingz.backend/pkg/identity"
	"savingz.backend/pkg/logger"
)

const maxPushTokenLength = 255

// UserUsecase handles registration and profile edits
type UserUsecase struct {
	userRepo repositories.UserRepository
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(userRepo repositories.UserRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo}
}

// Register creates the user for a verified identity, or returns the
// existing one. The email claim of the token wins over the body.
func (u *UserUsecase) Register(ctx context.Context, id *identity.Identity, input *entities.RegisterUserInput) (*entities.User, error) {
	if id == nil || id.UID == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	email := strings.TrimSpace(id.Email)
	if email == "" && input != nil {
		email = strings.TrimSpace(input.Email)
	}
	if email == "" {
		return nil, domainerrors.Invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domainerrors.Invalid("email is invalid")
	}

	user, err := u.userRepo.Upsert(ctx, &entities.User{
		FirebaseID: id.UID,
		Email:      strings.ToLower(email),
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser returns the user behind a verified identity
func (u *UserUsecase) GetUser(ctx context.Context, firebaseUID string) (*entities.User, error) {
	return u.userRepo.GetByFirebaseID(ctx, firebaseUID)
}

// UpdateProfile changes only the supplied name fields
func (u *UserUsecase) UpdateProfile(ctx context.Context, firebaseUID string, input *entities.UpdateProfileInput) (*entities.User, error) {
	if input == nil {
		return nil, domainerrors.Invalid("firstName or lastName is required")
	}
	if reason, ok := input.Normalize(); !ok {
		return nil, domainerrors.Invalid(reason)
	}

	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	if err := u.userRepo.UpdateProfile(ctx, user.ID, *input); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, user.ID)
}

// RegisterPushToken stores the device push token; an empty token clears it
func (u *UserUsecase) RegisterPushToken(ctx context.Context, firebaseUID string, input *entities.PushTokenInput) (*entities.User, error) {
	token := ""
	if input != nil {
		token = strings.TrimSpace(input.Token)
	}
	if len(token) > maxPushTokenLength {
		return nil, domainerrors.Invalid("push token is too long")
	}
	if token != "" && !entities.IsExpoPushToken(token) {
		return nil, domainerrors.Invalid("push token must be an Expo push token")
	}

	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	if err := u.userRepo.UpdatePushToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, user.ID)
}

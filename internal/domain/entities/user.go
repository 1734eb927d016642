package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = ""
)

const maxNameLength = 100

// User is the savings account holder and its gamification aggregate.
type User struct {
	ID            uuid.UUID   `json:"id"`
	FirebaseID    string      `json:"firebaseId"`
	Email         string      `json:"email"`
	FirstName     null.String `json:"firstName"`
	LastName      null.String `json:"lastName"`
	Role          UserRole    `json:"role"`
	XP            int64       `json:"xp"`
	Level         int         `json:"level"`
	StreakCount   int         `json:"streakCount"`
	LastSavedDate null.Time   `json:"lastSavedDate"`
	PushToken     null.String `json:"-"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsAdmin reports whether the user may run administrative actions.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// DisplayName is "First Last" when any name part is set, otherwise the email.
func (u *User) DisplayName() string {
	return displayName(u.FirstName, u.LastName, u.Email)
}

func displayName(first, last null.String, email string) string {
	name := strings.TrimSpace(strings.TrimSpace(first.String) + " " + strings.TrimSpace(last.String))
	if name == "" {
		return email
	}
	return name
}

// ApplyDeposit folds one deposit into the aggregate and returns the XP earned.
func (u *User) ApplyDeposit(amount decimal.Decimal, at time.Time) int64 {
	earned := XPForAmount(amount)
	u.XP += earned
	u.Level = LevelForXP(u.XP)
	u.StreakCount = NextStreak(u.StreakCount, u.LastSavedDate, at)
	u.LastSavedDate = null.TimeFrom(at)
	return earned
}

// RegisterUserInput is the body of the register call
type RegisterUserInput struct {
	Email string `json:"email"`
}

// UpdateProfileInput carries optional name changes; nil leaves a field untouched.
type UpdateProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// Normalize trims the supplied fields and enforces length limits.
func (in *UpdateProfileInput) Normalize() (string, bool) {
	for _, field := range []*string{in.FirstName, in.LastName} {
		if field == nil {
			continue
		}
		*field = strings.TrimSpace(*field)
		if len(*field) > maxNameLength {
			return "name fields must be at most 100 characters", false
		}
	}
	if in.FirstName == nil && in.LastName == nil {
		return "firstName or lastName is required", false
	}
	return "", true
}

// PushTokenInput registers (or clears, when empty) the device push token
type PushTokenInput struct {
	Token string `json:"token"`
}

// IsExpoPushToken reports whether token has the Expo push token shape
func IsExpoPushToken(token string) bool {
	return (strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")) &&
		strings.HasSuffix(token, "]")
}

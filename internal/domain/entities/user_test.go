package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestUser_ApplyDeposit_LevelProgression(t *testing.T) {
	u := &User{}
	day := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	earned := u.ApplyDeposit(decimal.NewFromInt(250), day)
	assert.Equal(t, int64(250), earned)
	assert.Equal(t, int64(250), u.XP)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, 1, u.StreakCount)

	earned = u.ApplyDeposit(decimal.NewFromInt(150), day.Add(24*time.Hour))
	assert.Equal(t, int64(150), earned)
	assert.Equal(t, int64(400), u.XP)
	assert.Equal(t, 2, u.Level)
	assert.Equal(t, 2, u.StreakCount)
	assert.True(t, u.LastSavedDate.Time.Equal(day.Add(24*time.Hour)))
}

func TestUser_DisplayName(t *testing.T) {
	u := &User{Email: "ada@mail.com"}
	assert.Equal(t, "ada@mail.com", u.DisplayName())

	u.FirstName = null.StringFrom(" Ada ")
	assert.Equal(t, "Ada", u.DisplayName())

	u.LastName = null.StringFrom("Lovelace")
	assert.Equal(t, "Ada Lovelace", u.DisplayName())

	u.FirstName = null.StringFrom("   ")
	assert.Equal(t, "Lovelace", u.DisplayName())
}

func TestUser_IsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
	assert.True(t, (&User{Role: UserRoleAdmin}).IsAdmin())
}

func TestUpdateProfileInput_Normalize(t *testing.T) {
	first := "  Grace "
	in := UpdateProfileInput{FirstName: &first}
	_, ok := in.Normalize()
	require.True(t, ok)
	assert.Equal(t, "Grace", *in.FirstName)

	reason, ok := (&UpdateProfileInput{}).Normalize()
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	long := string(make([]byte, 101))
	_, ok = (&UpdateProfileInput{LastName: &long}).Normalize()
	assert.False(t, ok)
}

func TestIsExpoPushToken(t *testing.T) {
	assert.True(t, IsExpoPushToken("ExponentPushToken[abc]"))
	assert.True(t, IsExpoPushToken("ExpoPushToken[abc]"))
	assert.False(t, IsExpoPushToken("fcm-token"))
	assert.False(t, IsExpoPushToken("ExponentPushToken[abc"))
	assert.False(t, IsExpoPushToken(""))
}

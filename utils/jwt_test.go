package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(7, 3, true)
	assert.NoError(t, err)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.EqualValues(t, 3, claims.OrganizationID)
	assert.True(t, claims.IsAdmin)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordResetTokenRoundTrip(t *testing.T) {
	token, err := GeneratePasswordResetToken(42, time.Hour)
	assert.NoError(t, err)

	userID, err := VerifyPasswordResetToken(token)
	assert.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestPasswordResetTokenExpires(t *testing.T) {
	token, err := GeneratePasswordResetToken(42, -time.Minute)
	assert.NoError(t, err)

	_, err = VerifyPasswordResetToken(token)
	assert.Error(t, err)
}

func TestSessionTokenIsNotAResetToken(t *testing.T) {
	token, err := GenerateToken(7, 3, false)
	assert.NoError(t, err)

	_, err = VerifyPasswordResetToken(token)
	assert.Error(t, err)
}

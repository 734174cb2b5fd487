package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.IssuePair(12, "sue")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := m.Parse(pair.Access, "access")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "sue", claims.Username)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.Parse(pair.Refresh, "refresh")
	assert.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestManager_Parse_WrongKind(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.IssuePair(12, "sue")
	assert.NoError(t, err)

	_, err = m.Parse(pair.Access, "refresh")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Parse_WrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, 24*time.Hour)
	verifier := NewManager("secret-b", time.Hour, 24*time.Hour)

	pair, err := issuer.IssuePair(12, "sue")
	assert.NoError(t, err)

	_, err = verifier.Parse(pair.Access, "access")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Parse_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 24*time.Hour)

	pair, err := m.IssuePair(12, "sue")
	assert.NoError(t, err)

	_, err = m.Parse(pair.Access, "access")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

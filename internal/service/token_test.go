package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue("moderator-7", RoleModerator)
	require.NoError(t, err)

	userID, role, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "moderator-7", userID)
	assert.Equal(t, RoleModerator, role)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Issue("client-1", RoleClient)
	require.NoError(t, err)

	_, _, err = NewTokenManager("other-secret", time.Hour).ParseAccess(token)
	assert.Error(t, err)

	expired, err := NewTokenManager("test-secret", -time.Minute).Issue("client-1", RoleClient)
	require.NoError(t, err)
	_, _, err = m.ParseAccess(expired)
	assert.Error(t, err)

	_, _, err = m.ParseAccess("not-a-token")
	assert.Error(t, err)

	empty, err := m.Issue("", RoleClient)
	require.NoError(t, err)
	_, _, err = m.ParseAccess(empty)
	assert.Error(t, err)
}

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentity_NilIsAnonymous(t *testing.T) {
	var id *Identity
	require.False(t, id.Authenticated())
	require.False(t, id.IsAdmin())
	require.False(t, id.Is(""))
}

func TestIdentity_RoleIsExplicit(t *testing.T) {
	user := &Identity{UserID: "u1", Role: RoleUser}
	admin := &Identity{UserID: "u2", Role: RoleAdmin}

	require.True(t, user.Authenticated())
	require.False(t, user.IsAdmin())
	require.True(t, user.Is("u1"))
	require.False(t, user.Is("u2"))
	require.True(t, admin.IsAdmin())
}

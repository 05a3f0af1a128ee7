package users_test

import (
	"testing"

	"github.com/jrsteele09/go-campus/users"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", hash)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Secret123"))
	require.False(t, u.CheckPassword("secret123"))
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Ada", (&users.User{Name: "Ada", Email: "ada@example.com"}).DisplayName())
	require.Equal(t, "ada", (&users.User{Email: "ada@example.com"}).DisplayName())
}

func TestNormaliseEmail(t *testing.T) {
	require.Equal(t, "ada@example.com", users.NormaliseEmail("  Ada@Example.COM "))
}

package docstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	backends(t, func(t *testing.T, m *Manager) {
		repo := NewRepository(usersDB(t, m), "user")

		found, err := repo.FindAll(10, 1)
		require.NoError(t, err)
		require.Empty(t, found)

		u1 := User{ID: "1", Name: "foo", Status: Active}
		u2 := User{ID: "2", Name: "bar", Status: Banned}
		u3 := User{ID: "3", Name: "boz", Status: Active}
		for _, u := range []User{u3, u1, u2} {
			saved, err := repo.Save(u)
			require.NoError(t, err)
			require.Equal(t, u, saved)
		}

		u, ok, err := repo.FindByID("1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, u1, u)

		_, ok, err = repo.FindByID("9")
		require.NoError(t, err)
		require.False(t, ok)

		exists, err := repo.Exists("2")
		require.NoError(t, err)
		require.True(t, exists)

		all, err := repo.FindAll(2, 1)
		require.NoError(t, err)
		require.Equal(t, []User{u1, u2}, all)
		all, err = repo.FindAll(2, 2)
		require.NoError(t, err)
		require.Equal(t, []User{u3}, all)
		_, err = repo.FindAll(2, 3)
		require.ErrorIs(t, err, ErrPageOutOfRange)

		active, err := repo.FindBySecondaryKey(Active, 10, 1)
		require.NoError(t, err)
		require.Equal(t, []User{u3, u1}, active)

		none, err := repo.FindBySecondaryKey(Inactive, 10, 1)
		require.NoError(t, err)
		require.Empty(t, none)
	})
}

func TestRepositoryPartitionsAreSeparate(t *testing.T) {
	m := setupMem(t)
	users := usersDB(t, m)
	admins := NewRepository(users, "admin")
	members := NewRepository(users, "member")

	for i := 0; i < 3; i++ {
		_, err := members.Save(User{ID: fmt.Sprint(i), Status: Active})
		require.NoError(t, err)
	}
	_, err := admins.Save(User{ID: "0", Name: "root", Status: Active})
	require.NoError(t, err)

	a, err := admins.FindBySecondaryKey(Active, 10, 1)
	require.NoError(t, err)
	require.Equal(t, []User{{ID: "0", Name: "root", Status: Active}}, a)

	u, ok, err := members.FindByID("0")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "", u.Name)
	require.Equal(t, 3, must(users.Count("member")))
}

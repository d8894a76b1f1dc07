package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailadmin/models"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": b,
	}
}

func TestStore_EmptyHasNoSession(t *testing.T) {
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			_, err := s.Load()
			assert.ErrorIs(t, err, ErrNoSession)

			token, ok := s.Token()
			assert.False(t, ok)
			assert.Empty(t, token)
		})
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			err := s.Save(models.Session{Token: "abc", User: models.Record{"id": "1", "fullName": "Ada Admin"}})
			require.NoError(t, err)

			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, "abc", got.Token)
			assert.Equal(t, "Ada Admin", got.User.Text("fullName"))

			token, ok := s.Token()
			assert.True(t, ok)
			assert.Equal(t, "abc", token)

			require.NoError(t, s.Clear())
			_, err = s.Load()
			assert.ErrorIs(t, err, ErrNoSession)
			_, ok = s.Token()
			assert.False(t, ok)
		})
	}
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	for name, s := range stores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Save(models.Session{User: models.Record{"id": "1"}}))
			_, err := s.Load()
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, b.Save(models.Session{Token: "persisted"}))
	require.NoError(t, b.Close())

	b, err = Open(dir)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Token)
	assert.NotNil(t, got.User)
}

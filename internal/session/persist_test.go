package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betpanel-client/internal/models"
)

func TestFilePersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	p := NewFilePersistence(path)

	snap, err := p.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	user := &models.UserProfile{ID: 3, Username: "master1", Role: models.RoleMaster}
	require.NoError(t, p.Save(Snapshot{Token: "tok", User: user}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	snap, err = p.Load()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "tok", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "master1", snap.User.Username)

	require.NoError(t, p.Clear())
	snap, err = p.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFilePersistenceCorruptFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	snap, err := NewFilePersistence(path).Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFilePersistenceEmptyTokenTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"","user":null}`), 0o600))

	snap, err := NewFilePersistence(path).Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFilePersistenceClearMissingFile(t *testing.T) {
	p := NewFilePersistence(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, p.Clear())
}

func TestPopupTrackerMarkSeenOnce(t *testing.T) {
	tr := NewPopupTracker()
	assert.False(t, tr.Seen("promo-1"))
	assert.True(t, tr.MarkSeen("promo-1"))
	assert.False(t, tr.MarkSeen("promo-1"))
	assert.True(t, tr.Seen("promo-1"))
	assert.True(t, tr.MarkSeen("promo-2"))
}

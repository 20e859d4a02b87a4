package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_TokenRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	assert.Empty(t, fs.Token(), "missing token file reads as empty")

	require.NoError(t, fs.SaveToken("abc123"))
	assert.Equal(t, "abc123", fs.Token())

	require.NoError(t, fs.ClearToken())
	assert.Empty(t, fs.Token())
}

func TestFileStore_ClearMissingIsNoError(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	assert.NoError(t, fs.ClearToken())
	assert.NoError(t, fs.ClearTheme())
}

func TestFileStore_ThemeRoundTrip(t *testing.T) {
	fs := NewFileStore(t.TempDir())

	require.NoError(t, fs.SaveTheme("dark"))
	assert.Equal(t, "dark", fs.Theme())

	require.NoError(t, fs.SaveTheme("light"))
	assert.Equal(t, "light", fs.Theme())
}

func TestFileStore_CreatesDirOnWrite(t *testing.T) {
	dir := t.TempDir() + "/nested/state"
	fs := NewFileStore(dir)
	require.NoError(t, fs.SaveToken("tok"))
	assert.Equal(t, "tok", fs.Token())
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaMapPutGet(t *testing.T) {
	m := NewMediaMap()

	_, ok := m.Get("blob:a")
	assert.False(t, ok)

	m.Put("blob:a", "https://host/files/a.png")

	url, ok := m.Get("blob:a")
	require.True(t, ok)
	assert.Equal(t, "https://host/files/a.png", url)
	assert.Equal(t, 1, m.Len())
}

func TestMediaMapPutOverwriteMovesReverse(t *testing.T) {
	m := NewMediaMap()

	m.Put("blob:a", "https://host/files/old.png")
	m.Put("blob:a", "https://host/files/new.png")

	url, ok := m.Get("blob:a")
	require.True(t, ok)
	assert.Equal(t, "https://host/files/new.png", url)

	// stale URL must no longer invalidate the key
	_, ok = m.InvalidateByURL("https://host/files/old.png")
	assert.False(t, ok)

	key, ok := m.InvalidateByURL("https://host/files/new.png")
	require.True(t, ok)
	assert.Equal(t, "blob:a", key)
}

func TestMediaMapInvalidateExactMatchOnly(t *testing.T) {
	m := NewMediaMap()

	m.Put("blob:a", "https://host/files/a.png")
	m.Put("blob:b", "https://host/files/a.png.bak")

	key, ok := m.InvalidateByURL("https://host/files/a.png")
	require.True(t, ok)
	assert.Equal(t, "blob:a", key)

	// the longer URL that merely contains the invalidated one survives
	url, ok := m.Get("blob:b")
	require.True(t, ok)
	assert.Equal(t, "https://host/files/a.png.bak", url)
}

func TestMediaMapInvalidateUnknownURL(t *testing.T) {
	m := NewMediaMap()
	m.Put("blob:a", "https://host/files/a.png")

	_, ok := m.InvalidateByURL("https://host/files/other.png")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

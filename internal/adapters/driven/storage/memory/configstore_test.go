package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Seeded(t *testing.T) {
	seed := map[string]any{
		"canvas.base_url":    "https://school.test",
		"download.window":    int64(3),
		"extract.concurrent": true,
		"tags":               []any{"a", 1, "b"},
	}
	s := NewConfigStore(seed)
	seed["canvas.base_url"] = "changed"

	assert.Equal(t, "https://school.test", s.GetString("canvas.base_url"))
	assert.Equal(t, 3, s.GetInt("download.window"))
	assert.True(t, s.GetBool("extract.concurrent"))
	assert.Equal(t, []string{"a", "b"}, s.GetStringSlice("tags"))
}

func TestConfigStore_WrongTypesAreZero(t *testing.T) {
	s := NewConfigStore(map[string]any{"k": "v"})

	assert.Zero(t, s.GetInt("k"))
	assert.False(t, s.GetBool("k"))
	assert.Nil(t, s.GetStringSlice("k"))
	assert.Empty(t, s.GetString("missing"))
}

func TestConfigStore_SetCountsSaves(t *testing.T) {
	s := NewConfigStore(nil)

	require.NoError(t, s.Set("relay.url", "http://localhost:3000"))
	require.NoError(t, s.Save())

	v, ok := s.Get("relay.url")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:3000", v)
	assert.Equal(t, 2, s.Saves())
	assert.NoError(t, s.Load())
	assert.Empty(t, s.Path())
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func newSettingsService(values map[string]any, env map[string]string) *SettingsService {
	s := NewSettingsService(memory.NewConfigStore(values))
	s.getenv = func(k string) string { return env[k] }
	return s
}

func TestSettingsService_Defaults(t *testing.T) {
	settings, err := newSettingsService(nil, nil).Get()

	require.NoError(t, err)
	d := domain.DefaultSettings()
	assert.Equal(t, d.Extract, settings.Extract)
	assert.Equal(t, d.Download, settings.Download)
	assert.Equal(t, domain.DefaultRelayURL, settings.Relay.URL)
	assert.Equal(t, 150*time.Millisecond, settings.Canvas.NestedDelay)
	assert.False(t, settings.Canvas.IsConfigured())
}

func TestSettingsService_StoredValues(t *testing.T) {
	s := newSettingsService(map[string]any{
		KeyBaseURL:        "https://school.instructure.com/",
		KeyToken:          "tok",
		KeyNestedDelay:    int64(300),
		KeyDiscussions:    false,
		KeyConcurrent:     true,
		KeyMaxRecordChars: int64(4000),
		KeyWindow:         int64(5),
		KeyDownloadDelay:  int64(0),
	}, nil)

	settings, err := s.Get()

	require.NoError(t, err)
	assert.Equal(t, "https://school.instructure.com", settings.Canvas.BaseURL)
	assert.True(t, settings.Canvas.IsConfigured())
	assert.Equal(t, 300*time.Millisecond, settings.Canvas.NestedDelay)
	assert.False(t, settings.Extract.IncludeDiscussions)
	assert.True(t, settings.Extract.IncludeFiles)
	assert.True(t, settings.Extract.Concurrent)
	assert.Equal(t, 4000, settings.Extract.MaxRecordChars)
	assert.Equal(t, 5, settings.Download.Window)
	assert.Zero(t, settings.Download.Delay)
}

func TestSettingsService_EnvironmentWins(t *testing.T) {
	s := newSettingsService(
		map[string]any{KeyBaseURL: "https://file.example", KeyRelayURL: "http://file-relay"},
		map[string]string{EnvBaseURL: "https://env.example", EnvCookie: "canvas_session=1", EnvRelayURL: "http://env-relay"},
	)

	settings, err := s.Get()

	require.NoError(t, err)
	assert.Equal(t, "https://env.example", settings.Canvas.BaseURL)
	assert.Equal(t, "canvas_session=1", settings.Canvas.Cookie)
	assert.Equal(t, "http://env-relay", settings.Relay.URL)
}

func TestSettingsService_InvalidWindow(t *testing.T) {
	_, err := newSettingsService(map[string]any{KeyWindow: int64(0)}, nil).Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore(nil)
	s := NewSettingsService(store)

	require.NoError(t, s.Set(KeyConcurrent, "true"))
	require.NoError(t, s.Set(KeyWindow, "4"))
	require.NoError(t, s.Set(KeyBaseURL, "https://school.test"))

	assert.True(t, store.GetBool(KeyConcurrent))
	assert.Equal(t, 4, store.GetInt(KeyWindow))
	assert.Equal(t, "https://school.test", store.GetString(KeyBaseURL))

	assert.ErrorIs(t, s.Set("search.mode", "x"), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Set(KeyConcurrent, "maybe"), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Set(KeyWindow, "-1"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	keys := newSettingsService(nil, nil).Keys()

	assert.Contains(t, keys, KeyRelayURL)
	assert.IsNonDecreasing(t, keys)
}

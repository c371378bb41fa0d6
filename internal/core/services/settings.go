package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyBaseURL        = "canvas.base_url"
	KeyToken          = "canvas.token"
	KeyCookie         = "canvas.cookie"
	KeyNestedDelay    = "canvas.nested_delay_ms"
	KeyFiles          = "extract.include_files"
	KeyAssignments    = "extract.include_assignments"
	KeyModules        = "extract.include_modules"
	KeyDiscussions    = "extract.include_discussions"
	KeyPages          = "extract.include_pages"
	KeyConcurrent     = "extract.concurrent"
	KeyMaxRecordChars = "extract.max_record_chars"
	KeyDOMMaxResults  = "dom.max_results"
	KeyWindow         = "download.window"
	KeyDownloadDelay  = "download.delay_ms"
	KeyRelayURL       = "relay.url"
	KeyLogFormat      = "log.format"
)

// Environment overrides.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvBaseURL  = "COURSEKIT_BASE_URL"
	EnvToken    = "COURSEKIT_TOKEN"
	EnvCookie   = "COURSEKIT_COOKIE"
	EnvRelayURL = "COURSEKIT_RELAY_URL"
)

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
)

var keyKinds = map[string]keyKind{
	KeyBaseURL:        kindString,
	KeyToken:          kindString,
	KeyCookie:         kindString,
	KeyNestedDelay:    kindInt,
	KeyFiles:          kindBool,
	KeyAssignments:    kindBool,
	KeyModules:        kindBool,
	KeyDiscussions:    kindBool,
	KeyPages:          kindBool,
	KeyConcurrent:     kindBool,
	KeyMaxRecordChars: kindInt,
	KeyDOMMaxResults:  kindInt,
	KeyWindow:         kindInt,
	KeyDownloadDelay:  kindInt,
	KeyRelayURL:       kindString,
	KeyLogFormat:      kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a settings service reading overrides from
// the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore, getenv: os.Getenv}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Canvas: domain.CanvasSettings{
			BaseURL:     s.overlay(EnvBaseURL, s.configStore.GetString(KeyBaseURL)),
			Token:       s.overlay(EnvToken, s.configStore.GetString(KeyToken)),
			Cookie:      s.overlay(EnvCookie, s.configStore.GetString(KeyCookie)),
			NestedDelay: s.getMillis(KeyNestedDelay, d.Canvas.NestedDelay),
		},
		Extract: domain.ExtractSettings{
			IncludeFiles:       s.getBool(KeyFiles, d.Extract.IncludeFiles),
			IncludeAssignments: s.getBool(KeyAssignments, d.Extract.IncludeAssignments),
			IncludeModules:     s.getBool(KeyModules, d.Extract.IncludeModules),
			IncludeDiscussions: s.getBool(KeyDiscussions, d.Extract.IncludeDiscussions),
			IncludePages:       s.getBool(KeyPages, d.Extract.IncludePages),
			Concurrent:         s.getBool(KeyConcurrent, d.Extract.Concurrent),
			MaxRecordChars:     s.getInt(KeyMaxRecordChars, d.Extract.MaxRecordChars),
			DOMMaxResults:      s.getInt(KeyDOMMaxResults, d.Extract.DOMMaxResults),
		},
		Download: domain.DownloadSettings{
			Window: s.getInt(KeyWindow, d.Download.Window),
			Delay:  s.getMillis(KeyDownloadDelay, d.Download.Delay),
		},
		Relay: domain.RelaySettings{
			URL: s.overlay(EnvRelayURL, s.getString(KeyRelayURL, d.Relay.URL)),
		},
		LogFormat: s.getString(KeyLogFormat, d.LogFormat),
	}

	if settings.Canvas.BaseURL != "" {
		settings.Canvas.BaseURL = strings.TrimRight(settings.Canvas.BaseURL, "/")
	}
	if settings.Download.Window <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, KeyWindow)
	}
	return settings, nil
}

// Set parses value according to the type of key and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, b)
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, int64(n))
	default:
		return s.configStore.Set(key, value)
	}
}

// Keys lists the known configuration keys in order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SettingsService) overlay(env, val string) string {
	if v := strings.TrimSpace(s.getenv(env)); v != "" {
		return v
	}
	return val
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Millisecond
}

package domain

import "time"

// Setting defaults.
const (
	DefaultNestedDelay    = 150 * time.Millisecond
	DefaultDownloadWindow = 3
	DefaultDownloadDelay  = time.Second
	DefaultDOMMaxResults  = 500
	DefaultRelayURL       = "http://localhost:3000"
)

// CanvasSettings configures access to the course platform.
type CanvasSettings struct {
	// BaseURL is the platform origin, e.g. https://school.instructure.com.
	BaseURL string

	// Token is a bearer access token. Optional when Cookie is set.
	Token string

	// Cookie is a raw session cookie header value.
	Cookie string

	// NestedDelay is the pause between per-item detail fetches.
	NestedDelay time.Duration
}

// IsConfigured returns true if the platform can be reached.
func (c CanvasSettings) IsConfigured() bool {
	return c.BaseURL != "" && (c.Token != "" || c.Cookie != "")
}

// ExtractSettings selects which sources run and how.
type ExtractSettings struct {
	IncludeFiles       bool
	IncludeAssignments bool
	IncludeModules     bool
	IncludeDiscussions bool
	IncludePages       bool

	// Concurrent runs source adapters in parallel.
	Concurrent bool

	// MaxRecordChars splits longer text records into parts. Zero disables.
	MaxRecordChars int

	// DOMMaxResults bounds the DOM fallback scan.
	DOMMaxResults int
}

// DownloadSettings configures the batch downloader.
type DownloadSettings struct {
	Window int
	Delay  time.Duration
}

// RelaySettings configures the relay backend.
type RelaySettings struct {
	URL string
}

// Settings is the full typed configuration.
type Settings struct {
	Canvas   CanvasSettings
	Extract  ExtractSettings
	Download DownloadSettings
	Relay    RelaySettings

	// LogFormat is "console" (bracketed text) or "json".
	LogFormat string
}

// DefaultSettings returns settings with every source enabled.
func DefaultSettings() Settings {
	return Settings{
		Canvas: CanvasSettings{NestedDelay: DefaultNestedDelay},
		Extract: ExtractSettings{
			IncludeFiles:       true,
			IncludeAssignments: true,
			IncludeModules:     true,
			IncludeDiscussions: true,
			IncludePages:       true,
			DOMMaxResults:      DefaultDOMMaxResults,
		},
		Download: DownloadSettings{
			Window: DefaultDownloadWindow,
			Delay:  DefaultDownloadDelay,
		},
		Relay:     RelaySettings{URL: DefaultRelayURL},
		LogFormat: "console",
	}
}

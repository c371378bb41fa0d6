// Package app wires the adapters and services behind the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/custodia-labs/coursekit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursekit/internal/adapters/driven/relay"
	"github.com/custodia-labs/coursekit/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/coursekit/internal/adapters/driving/cli"
	"github.com/custodia-labs/coursekit/internal/connectors/canvas"
	"github.com/custodia-labs/coursekit/internal/connectors/dom"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
	"github.com/custodia-labs/coursekit/internal/core/services"
	"github.com/custodia-labs/coursekit/internal/logger"
	"github.com/custodia-labs/coursekit/internal/normalisers"
	"github.com/custodia-labs/coursekit/internal/normalisers/docx"
	"github.com/custodia-labs/coursekit/internal/normalisers/html"
	"github.com/custodia-labs/coursekit/internal/normalisers/pdf"
	"github.com/custodia-labs/coursekit/internal/normalisers/plaintext"
)

// DataDir is the store directory inside the config directory.
const DataDir = "data"

// ErrNoSource is returned when a run has neither platform access nor a page.
var ErrNoSource = errors.New("no source: configure canvas.base_url with a token or cookie, or pass --snapshot or --live")

// Wire builds the CLI services for configDir. An empty configDir means
// ~/.coursekit.
func Wire(_ context.Context, configDir string) (*cli.Services, func(), error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, err
		}
		configDir = dir
	}

	cwd, _ := os.Getwd()
	loaded, err := file.LoadDotEnv(cwd, configDir)
	if err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	if err := logger.Setup(settings.LogFormat); err != nil {
		return nil, nil, err
	}
	for _, path := range loaded {
		logger.Debug("env: loaded %s", path)
	}

	store, err := sqlite.NewStore(filepath.Join(configDir, DataDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	runStore := store.RunStore()
	relayClient := relay.NewClient(relay.Config{BaseURL: settings.Relay.URL})

	a := New(settingsService, runStore)
	svc := &cli.Services{
		Pipeline:    a.Pipeline,
		Runs:        services.NewRunService(runStore),
		Upload:      services.NewUploadService(runStore, relayClient),
		Settings:    settingsService,
		Sink:        store.RecordSink(),
		Normalisers: Normalisers(),
		ConfigPath:  configStore.Path(),
	}
	release := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store: %v", err)
		}
	}
	return svc, release, nil
}

// Normalisers returns the registry used for downloaded files.
func Normalisers() *normalisers.Registry {
	return normalisers.NewRegistry(pdf.New(), docx.New(), html.New(), plaintext.New())
}

// App builds extraction pipelines from current settings.
type App struct {
	settings driving.SettingsService
	runs     driven.RunStore
}

// New creates an App. runs may be nil to skip persistence.
func New(settings driving.SettingsService, runs driven.RunStore) *App {
	return &App{settings: settings, runs: runs}
}

// Pipeline assembles the sources for target. The REST adapters, content
// collector and folder resolver need platform access; the page scan, DOM
// fallback and page content collector need a snapshot or a live page.
func (a *App) Pipeline(ctx context.Context, target cli.Target) (*cli.Pipeline, error) {
	settings, err := a.settings.Get()
	if err != nil {
		return nil, err
	}
	extract := settings.Extract
	if target.Concurrent {
		extract.Concurrent = true
	}
	kinds, err := canvas.ParseConfig(extract, target.Only)
	if err != nil {
		return nil, err
	}

	platform := settings.Canvas
	if platform.BaseURL == "" && target.PageURL != "" {
		platform.BaseURL = origin(target.PageURL)
	}

	opts := []services.ExtractionOption{services.WithExtractSettings(extract)}
	if a.runs != nil {
		opts = append(opts, services.WithRunStore(a.runs))
	}

	page := pageFor(target, platform)
	if page != nil {
		opts = append(opts,
			services.WithPageScan(dom.NewPageScanAdapter(page)),
			services.WithFallback(dom.NewAdapter(page, extract.DOMMaxResults)),
			services.WithPageContent(dom.NewCollector(page)),
		)
	}

	var adapters []driven.SourceAdapter
	pipeline := &cli.Pipeline{}
	switch {
	case platform.IsConfigured():
		client, err := canvas.NewClient(ctx, platform)
		if err != nil {
			return nil, err
		}
		adapters = kinds.Adapters(client)
		opts = append(opts,
			services.WithCollector(canvas.NewCollector(client)),
			services.WithFolderResolver(canvas.NewFolderResolver(client)),
		)
		pipeline.Fetcher = client
	case page == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrNoSource)
	default:
		logger.Warn("platform access not configured, scanning the page only")
	}

	pipeline.Extraction = services.NewExtractionService(adapters, opts...)
	return pipeline, nil
}

// pageFor picks the page provider: a snapshot, a live fetch, or none.
func pageFor(target cli.Target, platform domain.CanvasSettings) driven.PageProvider {
	location := target.PageURL
	if location == "" && platform.BaseURL != "" && target.CourseID != "" {
		location = platform.BaseURL + "/courses/" + target.CourseID
	}
	switch {
	case target.Snapshot != "":
		return dom.NewFilePage(target.Snapshot, location)
	case target.Live && target.PageURL != "":
		return dom.NewLivePage(target.PageURL, platform)
	default:
		return nil
	}
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

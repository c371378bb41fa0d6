// Package cli implements the coursekit command line.
//
// Commands reach the core through the driving ports held in Services.
// Services are built lazily by the WireFunc passed to Execute, after the
// global flags are parsed, so --config-dir applies to every command.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
	"github.com/custodia-labs/coursekit/internal/download"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// skipWire marks commands that run without services.
const skipWire = "skip-wire"

// Target describes what one extract invocation should read.
type Target struct {
	// CourseID is the numeric course id. Empty means page scan only.
	CourseID string

	// PageURL is the course page the id was taken from, if any.
	PageURL string

	// Snapshot is a saved HTML page to scan instead of fetching one.
	Snapshot string

	// Live fetches PageURL for the page scan.
	Live bool

	// Only narrows the REST adapters to a comma-separated list.
	Only string

	// Concurrent runs the adapters in parallel.
	Concurrent bool
}

// Pipeline is what an extract invocation runs.
type Pipeline struct {
	Extraction driving.ExtractionService

	// Fetcher opens file URLs for --download. Nil when the platform is
	// not configured.
	Fetcher download.Fetcher
}

// PipelineFactory builds the pipeline for a target.
type PipelineFactory func(ctx context.Context, target Target) (*Pipeline, error)

// Services holds what the commands need.
type Services struct {
	Pipeline    PipelineFactory
	Runs        driving.RunService
	Upload      driving.UploadService
	Settings    driving.SettingsService
	Sink        driven.RecordSink
	Normalisers driven.NormaliserRegistry
	ConfigPath  string
}

// WireFunc builds Services for a config directory. The returned func
// releases them.
type WireFunc func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	verbose   bool
	configDir string

	services *Services
	wire     WireFunc
	release  func()
)

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "coursekit",
	Short: "Extract course content from Canvas",
	Long: `coursekit discovers the files, assignments, modules, discussions and pages
of a Canvas course, builds a printable report, splits the course text into
records and can upload them to a relay server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[skipWire] != "" || services != nil || wire == nil {
			return nil
		}
		s, done, err := wire(cmd.Context(), configDir)
		if err != nil {
			return err
		}
		services, release = s, done
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and warnings")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.coursekit)")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs prebuilt services, bypassing the WireFunc.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command. w builds services on first use.
func Execute(ctx context.Context, w WireFunc) error {
	wire = w
	defer func() {
		if release != nil {
			release()
			release = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// requireServices returns the services or an error naming what is missing.
func requireServices() (*Services, error) {
	if services == nil {
		return nil, errNotConfigured
	}
	return services, nil
}

// exitError carries a result message that should fail the process.
type exitError struct{ msg string }

func (e *exitError) Error() string { return e.msg }

// IsResultFailure reports whether err is a failed run rather than a
// program error.
func IsResultFailure(err error) bool {
	var e *exitError
	return errors.As(err, &e)
}

func failedRun(result *domain.ExtractionResult) error {
	msg := result.Message
	if msg == "" {
		msg = domain.NoContentMessage
	}
	return &exitError{msg: msg}
}

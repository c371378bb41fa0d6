package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/coursekit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
	coresvc "github.com/custodia-labs/coursekit/internal/core/services"
)

type stubExtraction struct {
	result *domain.ExtractionResult
	err    error
	calls  []driving.ExtractOptions
}

func (s *stubExtraction) Extract(_ context.Context, opts driving.ExtractOptions) (*domain.ExtractionResult, error) {
	s.calls = append(s.calls, opts)
	return s.result, s.err
}

type stubRuns struct {
	runs  []domain.Run
	items []domain.ContentItem
}

func (s *stubRuns) List(context.Context) ([]domain.Run, error) { return s.runs, nil }

func (s *stubRuns) Get(_ context.Context, id string) (*domain.Run, error) {
	for i := range s.runs {
		if s.runs[i].ID == id {
			return &s.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRuns) Items(_ context.Context, _ string, source domain.Source) ([]domain.ContentItem, error) {
	var out []domain.ContentItem
	for _, item := range s.items {
		if source == "" || item.Source == source {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubRuns) Records(context.Context, string) ([]domain.TextRecord, error) { return nil, nil }

func (s *stubRuns) Delete(context.Context, string) error { return nil }

type stubUpload struct {
	summary *driving.UploadSummary
	pingErr error
	runIDs  []string
}

func (s *stubUpload) Upload(_ context.Context, runID string) (*driving.UploadSummary, error) {
	s.runIDs = append(s.runIDs, runID)
	return s.summary, nil
}

func (s *stubUpload) Ping(context.Context) error { return s.pingErr }

type testEnv struct {
	extraction *stubExtraction
	runs       *stubRuns
	upload     *stubUpload
	config     *memory.ConfigStore
	targets    []Target
}

// setupTestServices installs stub services and returns them.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		extraction: &stubExtraction{},
		runs:       &stubRuns{},
		upload:     &stubUpload{summary: &driving.UploadSummary{}},
		config:     memory.NewConfigStore(nil),
	}
	old := services
	services = &Services{
		Pipeline: func(_ context.Context, target Target) (*Pipeline, error) {
			env.targets = append(env.targets, target)
			return &Pipeline{Extraction: env.extraction}, nil
		},
		Runs:       env.runs,
		Upload:     env.upload,
		Settings:   coresvc.NewSettingsService(env.config),
		Sink:       memory.NewRecordStore(),
		ConfigPath: "/tmp/coursekit/config.toml",
	}
	t.Cleanup(func() { services = old })
	return env
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() == "stringSlice" {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

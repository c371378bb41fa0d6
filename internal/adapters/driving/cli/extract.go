package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
	"github.com/custodia-labs/coursekit/internal/download"
	"github.com/custodia-labs/coursekit/internal/export"
)

// watchDebounce groups the burst of writes a browser makes when saving.
const watchDebounce = 500 * time.Millisecond

var (
	extractSnapshot   string
	extractLive       bool
	extractReport     string
	extractUpload     bool
	extractDownload   string
	extractConcurrent bool
	extractWatch      bool
	extractJSON       bool
	extractOnly       string
)

var extractCmd = &cobra.Command{
	Use:   "extract [course-url-or-id]",
	Short: "Extract the content of a course",
	Long: `Runs every enabled source for a course, merges and deduplicates the
items, collects the course text and stores the run.

The argument is a course id or any course URL. Without an id only the page
scan runs, so pass --snapshot or --live with a page URL.

Examples:
  coursekit extract 12345
  coursekit extract https://school.instructure.com/courses/12345/modules --report out.txt
  coursekit extract --snapshot saved.html --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractSnapshot, "snapshot", "", "saved course page to scan")
	f.BoolVar(&extractLive, "live", false, "fetch the course page for the page scan")
	f.StringVar(&extractReport, "report", "", "write the text report to this file")
	f.BoolVar(&extractUpload, "upload", false, "upload the records to the relay")
	f.StringVar(&extractDownload, "download", "", "download the items under this directory")
	f.BoolVar(&extractConcurrent, "concurrent", false, "run the sources in parallel")
	f.BoolVar(&extractWatch, "watch", false, "re-run when the snapshot file changes")
	f.BoolVar(&extractJSON, "json", false, "print the result as JSON")
	f.StringVar(&extractOnly, "only", "", "comma-separated sources: files,assignments,modules,discussions,pages")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	target, err := parseTarget(arg)
	if err != nil {
		return err
	}
	target.Snapshot = extractSnapshot
	target.Live = extractLive
	target.Only = extractOnly
	target.Concurrent = extractConcurrent

	if extractWatch && target.Snapshot == "" {
		return fmt.Errorf("%w: --watch needs --snapshot", domain.ErrInvalidInput)
	}
	if extractLive && target.PageURL == "" {
		return fmt.Errorf("%w: --live needs a course URL", domain.ErrInvalidInput)
	}

	ctx := cmd.Context()
	pipeline, err := svc.Pipeline(ctx, target)
	if err != nil {
		return err
	}

	run := func() error { return extractOnce(ctx, cmd.OutOrStdout(), svc, pipeline, target) }
	if !extractWatch {
		return run()
	}

	if err := run(); err != nil && !IsResultFailure(err) {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s, Ctrl-C to stop\n", target.Snapshot)
	return watchFile(ctx, target.Snapshot, watchDebounce, func() error {
		if err := run(); err != nil && !IsResultFailure(err) {
			return err
		}
		return nil
	})
}

// parseTarget reads a course id or course URL.
func parseTarget(arg string) (Target, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "":
		return Target{}, nil
	case strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://"):
		return Target{CourseID: classifier.CourseIDFromURL(arg), PageURL: arg}, nil
	case isDigits(arg):
		return Target{CourseID: arg}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q is neither a course id nor a URL", domain.ErrInvalidInput, arg)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func extractOnce(ctx context.Context, out io.Writer, svc *Services, p *Pipeline, target Target) error {
	result, err := p.Extraction.Extract(ctx, driving.ExtractOptions{CourseID: target.CourseID})
	if err != nil {
		return err
	}

	if extractReport != "" && result.Report != "" {
		if err := os.WriteFile(extractReport, []byte(result.Report), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	var downloads []download.Result
	if extractDownload != "" && result.Success {
		downloads, err = downloadItems(ctx, out, svc, p, result)
		if err != nil {
			return err
		}
	}

	var uploaded *driving.UploadSummary
	if extractUpload && result.Success {
		if svc.Upload == nil {
			return fmt.Errorf("upload: %w", domain.ErrRelayUnavailable)
		}
		uploaded, err = svc.Upload.Upload(ctx, result.RunID)
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
	}

	if extractJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printResult(out, result, downloads, uploaded)
	}

	if !result.Success {
		return failedRun(result)
	}
	return nil
}

func downloadItems(
	ctx context.Context, out io.Writer, svc *Services, p *Pipeline, result *domain.ExtractionResult,
) ([]download.Result, error) {
	if p.Fetcher == nil {
		return nil, fmt.Errorf("download: %w", domain.ErrNoCourse)
	}
	settings := domain.DefaultSettings()
	if svc.Settings != nil {
		if s, err := svc.Settings.Get(); err == nil {
			settings = *s
		}
	}

	opts := []download.Option{download.WithRoot(extractDownload)}
	if svc.Normalisers != nil {
		opts = append(opts, download.WithNormalisers(svc.Normalisers))
	}
	if !extractJSON {
		opts = append(opts, download.WithProgress(func(done, total int) {
			fmt.Fprintf(out, "\rdownloaded %d/%d", done, total)
			if done == total {
				fmt.Fprintln(out)
			}
		}))
	}

	dl := download.New(p.Fetcher, settings.Download, opts...)
	results, err := dl.Download(ctx, result.Items)
	if err != nil {
		return results, fmt.Errorf("download: %w", err)
	}

	textDir := filepath.Join(extractDownload, classifier.Sanitize(courseDir(result.Course), classifier.KindPathComponent), "text")
	if err := saveTexts(textDir, download.Records(results)); err != nil {
		return results, err
	}
	return results, nil
}

func courseDir(c domain.Course) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// saveTexts writes the text of downloaded files beside the downloads.
func saveTexts(dir string, recs []domain.TextRecord) error {
	if len(recs) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create text dir: %w", err)
	}
	for _, rec := range recs {
		path := filepath.Join(dir, classifier.Sanitize(rec.FileName, classifier.KindFilename))
		if err := os.WriteFile(path, []byte(rec.RawText), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rec.FileName, err)
		}
	}
	return nil
}

func printResult(out io.Writer, r *domain.ExtractionResult, downloads []download.Result, up *driving.UploadSummary) {
	p := painterFor(out)

	name := r.Course.Name
	if name == "" {
		name = "course " + or(r.Course.ID, "(unknown)")
	}
	if r.Success {
		fmt.Fprintf(out, "%s %s: %d items, %d records\n", p.ok("OK"), name, len(r.Items), len(r.Records))
	} else {
		fmt.Fprintf(out, "%s %s: %s\n", p.fail("FAILED"), name, r.Message)
	}
	fmt.Fprintf(out, "  %s %s\n", p.label("run:"), r.RunID)

	if len(r.Stats.BySource) > 0 {
		sources := make([]string, 0, len(r.Stats.BySource))
		for s, n := range r.Stats.BySource {
			sources = append(sources, fmt.Sprintf("%s=%d", s, n))
		}
		sort.Strings(sources)
		fmt.Fprintf(out, "  %s %s\n", p.label("sources:"), p.dim(strings.Join(sources, " ")))
	}

	if len(downloads) > 0 {
		var size int64
		failed := 0
		for _, d := range downloads {
			if d.Err != nil {
				failed++
				continue
			}
			size += d.Item.SizeBytes
		}
		fmt.Fprintf(out, "  %s %d files (%s)", p.label("downloaded:"), len(downloads)-failed, export.FormatFileSize(size))
		if failed > 0 {
			fmt.Fprintf(out, ", %s", p.warn(fmt.Sprintf("%d failed", failed)))
		}
		fmt.Fprintln(out)
	}

	if up != nil {
		fmt.Fprintf(out, "  %s %d records", p.label("uploaded:"), up.Processed-up.Failed)
		if up.Failed > 0 {
			fmt.Fprintf(out, ", %s", p.warn(fmt.Sprintf("%d failed", up.Failed)))
		}
		fmt.Fprintln(out)
	}

	for _, issue := range r.Issues {
		fmt.Fprintf(out, "  %s %s: %s\n", p.warn("!"), issue.Source, issue.Message)
	}
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/export"
)

var (
	itemsSource string
	itemsJSON   bool
	runsJSON    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored extraction runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print the stored report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

var itemsCmd = &cobra.Command{
	Use:   "items <run-id>",
	Short: "List the items found by a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runItems,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <run-id>",
	Short: "Upload the records of a run to the relay",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check relay connectivity",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output runs as JSON")
	itemsCmd.Flags().StringVarP(&itemsSource, "source", "s", "", "only items from this source, e.g. api or module")
	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "output items as JSON")
	rootCmd.AddCommand(runsCmd, reportCmd, itemsCmd, uploadCmd, pingCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	runs, err := svc.Runs.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if runsJSON {
		return writeJSON(cmd.OutOrStdout(), runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs yet.")
		return nil
	}

	p := painterFor(cmd.OutOrStdout())
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOURSE\tITEMS\tSTARTED\tSTATUS")
	for _, r := range runs {
		status := p.ok("ok")
		if !r.Success {
			status = p.fail(or(r.Message, "failed"))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.ID, or(r.CourseName, r.CourseID), r.ItemCount, r.StartedAt.Local().Format("2006-01-02 15:04"), status)
	}
	return tw.Flush()
}

func runReport(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	run, err := svc.Runs.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run.Report == "" {
		return fmt.Errorf("run %s has no report: %w", run.ID, domain.ErrNoContent)
	}
	fmt.Fprint(cmd.OutOrStdout(), run.Report)
	return nil
}

func runItems(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	items, err := svc.Runs.Items(cmd.Context(), args[0], domain.Source(itemsSource))
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	if itemsJSON {
		return writeJSON(cmd.OutOrStdout(), items)
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No items.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSOURCE\tFOLDER\tSIZE")
	for _, item := range items {
		size := "-"
		if item.SizeBytes > 0 {
			size = export.FormatFileSize(item.SizeBytes)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.Name, item.ContentType, item.Source, item.FolderPath, size)
	}
	return tw.Flush()
}

func runUpload(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Upload == nil {
		return domain.ErrRelayUnavailable
	}
	summary, err := svc.Upload.Upload(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	p := painterFor(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d records uploaded\n",
		p.ok("OK"), summary.Processed-summary.Failed, summary.Processed)
	for _, res := range summary.Results {
		if res.Status != domain.IngestSuccess {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s: %s\n", p.warn("!"), res.FileName, res.Error)
		}
	}
	return nil
}

func runPing(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Upload == nil {
		return domain.ErrRelayUnavailable
	}
	p := painterFor(cmd.OutOrStdout())
	if err := svc.Upload.Ping(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s relay unreachable\n", p.fail("FAILED"))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s relay connected\n", p.ok("OK"))
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursekit/internal/adapters/driving/ingest"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local relay-compatible ingest server",
	Long: `Serves /ingest, /ingest-batch, /ping-snowflake and /content backed by
the local store, so uploads work without the hosted relay.

Point uploads at it with:
  coursekit config set relay.url http://localhost:3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 3000, "port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "interface to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Sink == nil {
		return fmt.Errorf("serve: no record store: %w", errNotConfigured)
	}

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	fmt.Fprintf(cmd.OutOrStdout(), "ingest server listening on http://%s\n", addr)
	return ingest.NewServer(svc.Sink, ingest.Config{Addr: addr}).Run(cmd.Context())
}

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `Settings live in ~/.coursekit/config.toml. COURSEKIT_BASE_URL,
COURSEKIT_TOKEN, COURSEKIT_COOKIE and COURSEKIT_RELAY_URL override the file,
and may be set in a .env file in the working or config directory.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print effective settings, or one key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := requireServices()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), svc.ConfigPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	return runConfigGet(cmd, nil)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Settings == nil {
		return errNotConfigured
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	values := settingValues(settings)

	if len(args) == 1 {
		v, ok := values[args[0]]
		if !ok {
			return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, key := range svc.Settings.Keys() {
		fmt.Fprintf(tw, "%s\t%s\n", key, values[key])
	}
	return tw.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Settings == nil {
		return errNotConfigured
	}
	if err := svc.Settings.Set(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
	return nil
}

// settingValues renders effective settings by config key. Secrets are
// masked.
func settingValues(s *domain.Settings) map[string]string {
	return map[string]string{
		"canvas.base_url":             s.Canvas.BaseURL,
		"canvas.token":                mask(s.Canvas.Token),
		"canvas.cookie":               mask(s.Canvas.Cookie),
		"canvas.nested_delay_ms":      fmt.Sprint(s.Canvas.NestedDelay.Milliseconds()),
		"extract.include_files":       fmt.Sprint(s.Extract.IncludeFiles),
		"extract.include_assignments": fmt.Sprint(s.Extract.IncludeAssignments),
		"extract.include_modules":     fmt.Sprint(s.Extract.IncludeModules),
		"extract.include_discussions": fmt.Sprint(s.Extract.IncludeDiscussions),
		"extract.include_pages":       fmt.Sprint(s.Extract.IncludePages),
		"extract.concurrent":          fmt.Sprint(s.Extract.Concurrent),
		"extract.max_record_chars":    fmt.Sprint(s.Extract.MaxRecordChars),
		"dom.max_results":             fmt.Sprint(s.Extract.DOMMaxResults),
		"download.window":             fmt.Sprint(s.Download.Window),
		"download.delay_ms":           fmt.Sprint(s.Download.Delay.Milliseconds()),
		"relay.url":                   s.Relay.URL,
		"log.format":                  s.LogFormat,
	}
}

func mask(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return strings.Repeat("*", len(secret))
	default:
		return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
	}
}

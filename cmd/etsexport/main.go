// Gray Logic ETS Export
//
// etsexport turns a group-address overview into the semicolon-separated,
// Windows-1252 encoded CSV file that ETS imports as a group-address
// structure. It runs as a one-shot command or as an HTTP service.
//
//	etsexport export -i overview.yaml -p "Villa Nova"
//	etsexport verify "Villa Nova-ets.csv"
//	etsexport serve -c configs/config.yaml
//	etsexport watch
//	etsexport db status
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/nerrad567/gray-logic-ets/migrations"

	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// configEnv names the environment variable holding the config file path.
const configEnv = "GRAYLOGIC_ETS_CONFIG"

func main() {
	// Cancel on Ctrl+C and SIGTERM so serve and watch shut down cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "etsexport",
		Short:         "Generate ETS group-address CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv(configEnv),
		"config file (defaults built in; env "+configEnv+")")

	cmd.AddCommand(
		newExportCmd(opts),
		newVerifyCmd(),
		newServeCmd(opts),
		newWatchCmd(opts),
		newDBCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// loadConfig reads the config file, or the built-in defaults when no path
// is given. Environment overrides apply in both cases.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg, err := config.Default()
		if err != nil {
			return nil, fmt.Errorf("loading default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// commandLogger writes structured logs to w so stdout stays reserved for
// command output.
func commandLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	return logging.NewWithWriter(cfg.Logging, version, w)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "etsexport %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

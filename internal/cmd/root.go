// Package cmd provides the CLI commands for mooring.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/ui"
)

// version is set at build time with -ldflags "-X ...internal/cmd.version=v1.2.3".
var version = "dev"

// Persistent flag values.
var (
	configFile string
	composeArg string
	projectArg string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mooring",
	Short: "Moor Docker Compose services to systemd",
	Long: `mooring - moor your compose services to systemd

Translates a docker-compose descriptor into one systemd service unit per
service plus a target grouping them, so the host's init system starts,
orders and restarts the containers.

UNIT COMMANDS
  generate              Translate the descriptor and write the units
    --dry-run, -n       Print the units without writing
    --diff, -d          Show a diff against the installed units
  validate              Check the descriptor without writing anything
  units                 List the units the descriptor produces
  show <service>        Print one rendered unit

DIAGNOSTICS
  doctor                Pre-flight checks for systemd and Docker
  status                Show the project's containers

RECOVERY
  rollback [snapshot]   Restore a previous set of units
    --list, -l          List available snapshots

SETUP
  init                  Scaffold mooring.yml
  update                Update mooring to the latest release`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetOutput(cmd.OutOrStdout())
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Configuration file (default: mooring.yml at the project root)")
	flags.StringVarP(&composeArg, "file", "f", "", "Compose descriptor (default: docker-compose.yml)")
	flags.StringVarP(&projectArg, "project", "p", "", "Project name (default: project directory name)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json")

	rootCmd.SetVersionTemplate("mooring version {{.Version}}\n")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/ui"
	"github.com/cameronsjo/mooring/internal/update"
)

// maxChangelogLines bounds the changelog excerpt.
const maxChangelogLines = 10

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"upgrade", "selfupdate"},
	Short:   "Update mooring to the latest release",
	Long: `Update mooring to the latest version from GitHub releases.

This command will:
1. Check for a newer version on GitHub
2. Download the appropriate binary for your platform
3. Replace the current binary with the new version

Examples:
  mooring update           # Update to latest version
  mooring update --check   # Check for updates without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var checkOnly bool

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ui.Info("Current version: %s (%s)", version, update.GetPlatformInfo())
	ui.Info("Checking for updates...")

	if checkOnly {
		return checkForUpdate(cmd)
	}
	return performUpdate(cmd)
}

func checkForUpdate(cmd *cobra.Command) error {
	release, available, err := update.CheckForUpdate(commandContext(cmd), version)
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}

	if !available {
		ui.Success("You're running the latest version!")
		return nil
	}

	ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
	ui.Info("To update, run: mooring update")
	printChangelog(release.Changelog)
	return nil
}

func performUpdate(cmd *cobra.Command) error {
	release, err := update.Update(commandContext(cmd), version)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if release == nil {
		ui.Success("You're already running the latest version!")
		return nil
	}

	ui.Success("Successfully updated to version %s!", release.Version)
	printChangelog(release.Changelog)
	return nil
}

// printChangelog prints the first lines of a release's notes.
func printChangelog(changelog string) {
	if changelog == "" {
		return
	}

	ui.Yellow.Fprintln(ui.Output(), "What's new:")
	lines := strings.Split(changelog, "\n")
	for i, line := range lines {
		if i == maxChangelogLines {
			fmt.Fprintf(ui.Output(), "  ... (%d more lines)\n", len(lines)-maxChangelogLines)
			break
		}
		fmt.Fprintf(ui.Output(), "  %s\n", line)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/ui"
)

// validateCmd checks the descriptor without writing anything.
var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"lint"},
	Short:   "Check the descriptor without writing anything",
	Long: `Validate the compose descriptor and run a full translation without
writing any unit.

Checks:
  - ports and volumes bind nothing on the host
  - every service depends only on services of the project
  - every service has exactly one of image or build
  - keys without a systemd mapping are reported as warnings`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ui.Info("Validating %s...", cfg.File)

	result, err := translate(cfg, logger)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	for _, w := range result.Warnings {
		ui.Warning("%s", w.Error())
	}

	ui.Success("%d services, %d warnings", len(result.Units), len(result.Warnings))
	return nil
}

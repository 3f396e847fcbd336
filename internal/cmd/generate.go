package cmd

import (
	"bytes"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/config"
	"github.com/cameronsjo/mooring/internal/fileutil"
	"github.com/cameronsjo/mooring/internal/lock"
	"github.com/cameronsjo/mooring/internal/preflight"
	"github.com/cameronsjo/mooring/internal/ui"
	"github.com/cameronsjo/mooring/internal/unit"
)

const unitFileMode = 0644

var (
	generateDryRun     bool
	generateDiff       bool
	generateNoSnapshot bool
)

// generateCmd translates the descriptor and writes the units.
var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Translate the descriptor and write the units",
	Long: `Translate the compose descriptor into systemd units and write them to the
output directory.

One service unit is written per service, plus a target that groups them.
The previous units are snapshotted first so they can be restored with
'mooring rollback'. Units of this project that are no longer produced are
removed.

Examples:
  mooring generate               # Write units to /etc/systemd/system
  mooring generate -n            # Dry run - print the units
  mooring generate -d            # Show a diff against the installed units
  mooring generate -o ./units    # Write somewhere else`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.BoolVarP(&generateDryRun, "dry-run", "n", false, "Print the units without writing")
	flags.BoolVarP(&generateDiff, "diff", "d", false, "Show a diff against the installed units")
	flags.BoolVar(&generateNoSnapshot, "no-snapshot", false, "Do not snapshot the previous units")
	flags.StringP("output", "o", "", "Output directory (default: /etc/systemd/system)")
	flags.String("override", "", "Override descriptor (default: docker-compose.override.yml if present)")
	flags.String("mount-root", "", "Directory bare volumes are bound under (default: /srv/<project>)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result, err := translate(cfg, logger)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		ui.Warning("%s", w.Error())
	}

	if generateDryRun {
		printUnits(cmd, result)
		return nil
	}

	units := unitsFS(cfg)

	if generateDiff {
		return showDiff(units, cfg.Naming(), result)
	}

	if err := preflight.CheckWritable(cfg.OutputDir); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	return lock.WithLock(cfg.LockDir(), cfg.Project, func() error {
		return writeUnits(cfg, units, result)
	})
}

// printUnits writes every unit to the command output, each under a header.
func printUnits(cmd *cobra.Command, result *unit.Result) {
	for i, f := range result.Files() {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		ui.Header("# %s", f.Name)
		fmt.Fprint(cmd.OutOrStdout(), f.Content)
	}
}

// showDiff prints a unified diff for every unit that would change, including
// stale units that would be removed.
func showDiff(units billy.Filesystem, naming unit.Naming, result *unit.Result) error {
	changed := 0
	generated := make(map[string]bool)

	for _, f := range result.Files() {
		generated[f.Name] = true

		old, exists, err := fileutil.ReadFile(units, f.Name)
		if err != nil {
			return err
		}
		if exists && bytes.Equal(old, []byte(f.Content)) {
			continue
		}

		d, err := fileutil.Diff(f.Name, old, []byte(f.Content))
		if err != nil {
			return fmt.Errorf("diff %s: %w", f.Name, err)
		}
		ui.Diff(d)
		changed++
	}

	current, err := projectUnits(units, naming)
	if err != nil {
		return err
	}
	for _, name := range current {
		if generated[name] {
			continue
		}
		old, _, err := fileutil.ReadFile(units, name)
		if err != nil {
			return err
		}
		d, err := fileutil.Diff(name, old, nil)
		if err != nil {
			return fmt.Errorf("diff %s: %w", name, err)
		}
		ui.Diff(d)
		changed++
	}

	if changed == 0 {
		ui.Success("Units are up to date")
	}
	return nil
}

// writeUnits snapshots the installed units, writes the generated ones and
// removes stale units of the project. Nothing is snapshotted or written when
// the installed units already match. The caller holds the project lock.
func writeUnits(cfg *config.Config, units billy.Filesystem, result *unit.Result) error {
	naming := cfg.Naming()

	current, err := projectUnits(units, naming)
	if err != nil {
		return err
	}

	generated := make(map[string]bool)
	var pending []unit.GeneratedUnit
	for _, f := range result.Files() {
		generated[f.Name] = true

		old, exists, err := fileutil.ReadFile(units, f.Name)
		if err != nil {
			return err
		}
		if exists && bytes.Equal(old, []byte(f.Content)) {
			continue
		}
		pending = append(pending, f)
	}

	var stale []string
	for _, name := range current {
		if !generated[name] {
			stale = append(stale, name)
		}
	}

	if len(pending) == 0 && len(stale) == 0 {
		ui.Success("Units for %s are up to date", cfg.Project)
		return nil
	}

	if !generateNoSnapshot && len(current) > 0 {
		name, err := snapshotStore(cfg, units).Create(current)
		if err != nil {
			return fmt.Errorf("snapshot units: %w", err)
		}
		if name != "" {
			ui.Snapshot("Snapshot %s", name)
		}
	}

	for _, f := range pending {
		if err := fileutil.WriteFile(units, f.Name, []byte(f.Content), unitFileMode); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
		ui.Unit("%s", f.Name)
	}

	for _, name := range stale {
		if err := units.Remove(name); err != nil {
			return fmt.Errorf("remove stale unit %s: %w", name, err)
		}
		ui.Warning("Removed stale unit %s", name)
	}

	ui.Moor("Moored %s: %d of %d units written to %s", cfg.Project, len(pending), len(result.Files()), cfg.OutputDir)
	ui.Muted("Run 'systemctl daemon-reload' and 'systemctl enable --now %s' to apply", naming.TargetName())
	return nil
}

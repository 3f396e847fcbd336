package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/lock"
	"github.com/cameronsjo/mooring/internal/snapshot"
	"github.com/cameronsjo/mooring/internal/ui"
)

// maxListedSnapshots bounds the snapshot listing.
const maxListedSnapshots = 10

var rollbackList bool

// rollbackCmd restores a previous set of units.
var rollbackCmd = &cobra.Command{
	Use:   "rollback [snapshot]",
	Short: "Restore a previous set of units",
	Long: `Restore the project's units from a snapshot taken by 'mooring generate'.

Without an argument the newest snapshot is restored. The units in place are
snapshotted first, so a rollback can itself be rolled back.

Examples:
  mooring rollback -l                                  # List snapshots
  mooring rollback                                     # Restore the newest
  mooring rollback snapshot-20260101-120000.000000000-1a2b3c4d`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRollback,
}

func init() {
	rollbackCmd.Flags().BoolVarP(&rollbackList, "list", "l", false, "List available snapshots")
	rollbackCmd.Flags().StringP("output", "o", "", "Unit directory to restore into (default: /etc/systemd/system)")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	units := unitsFS(cfg)
	store := snapshotStore(cfg, units)

	if rollbackList {
		return listSnapshots(store)
	}

	return lock.WithLock(cfg.LockDir(), cfg.Project, func() error {
		target := ""
		if len(args) > 0 {
			target = args[0]
		} else {
			latest, err := store.Latest()
			if errors.Is(err, snapshot.ErrNotFound) {
				return fmt.Errorf("no snapshots available in %s", cfg.Snapshots.Dir)
			}
			if err != nil {
				return err
			}
			target = latest.Name
		}

		current, err := projectUnits(units, cfg.Naming())
		if err != nil {
			return err
		}

		ui.Warning("Rolling back to: %s", target)

		restored, err := store.Restore(target, current)
		if err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}

		ui.Success("Rollback complete")
		for _, f := range restored {
			ui.Unit("%s", f)
		}
		ui.Muted("Run 'systemctl daemon-reload' to apply restored units")
		return nil
	})
}

func listSnapshots(store *snapshot.Store) error {
	snapshots, err := store.List()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		ui.Warning("No snapshots found")
		ui.Muted("Snapshots are created automatically before each generate")
		return nil
	}

	ui.Snapshot("Available snapshots:")
	for i, snap := range snapshots {
		if i >= maxListedSnapshots {
			ui.Muted("  ... and %d more", len(snapshots)-maxListedSnapshots)
			break
		}

		ui.Green.Fprintf(ui.Output(), "  %s\n", snap.Name)
		fmt.Fprintf(ui.Output(), "    Created: %s\n", snap.Created.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(ui.Output(), "    Files: %d\n", len(snap.Files))
	}

	return nil
}

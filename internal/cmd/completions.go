package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/compose"
)

// completeServiceNames completes the service names of the descriptor.
func completeServiceNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Don't complete if we already have an argument
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	p, err := compose.LoadFile(cfg.File)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return filterPrefix(p.Names(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSnapshotNames completes the snapshots of the unit directory.
func completeSnapshotNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	snapshots, err := snapshotStore(cfg, unitsFS(cfg)).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	names := make([]string, len(snapshots))
	for i, snap := range snapshots {
		names[i] = snap.Name
	}

	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(candidates []string, prefix string) []string {
	var names []string
	for _, name := range candidates {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names
}

// registerCompletions registers all dynamic completions for commands.
func registerCompletions() {
	showCmd.ValidArgsFunction = completeServiceNames
	rollbackCmd.ValidArgsFunction = completeSnapshotNames
}

func init() {
	registerCompletions()
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/docker"
	"github.com/cameronsjo/mooring/internal/fileutil"
	"github.com/cameronsjo/mooring/internal/ui"
)

// Display limits for the status table.
const (
	// MaxPortDisplayLength is the maximum length for displaying port mappings before truncation.
	MaxPortDisplayLength = 40
	// TruncatedPortLength is the length to truncate port display to when exceeding max.
	TruncatedPortLength = 37
)

// statusCmd shows the project's containers.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's containers",
	Long: `List the containers labelled with the compose project and whether a unit
for their service is installed. Nothing is started or stopped.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Unit directory (default: /etc/systemd/system)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	naming := cfg.Naming()
	units := unitsFS(cfg)

	return withDockerClient(commandContext(cmd), func(ctx context.Context, client *docker.Client) error {
		containers, err := client.ProjectContainers(ctx, cfg.Project)
		if err != nil {
			return err
		}

		if len(containers) == 0 {
			ui.Warning("No containers for project %s", cfg.Project)
			return nil
		}

		running := 0
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SERVICE\tCONTAINER\tSTATE\tSTATUS\tUNIT\tPORTS")
		fmt.Fprintln(w, "-------\t---------\t-----\t------\t----\t-----")
		for _, c := range containers {
			if c.Running() {
				running++
			}

			installed := "-"
			if c.Service != "" {
				if _, ok, _ := fileutil.ReadFile(units, naming.UnitName(c.Service)); ok {
					installed = "installed"
				}
			}

			ports := strings.Join(c.Ports, ", ")
			if len(ports) > MaxPortDisplayLength {
				ports = ports[:TruncatedPortLength] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Service, c.Name, c.State, c.Status, installed, ports)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout())
		ui.Info("%d of %d containers running", running, len(containers))
		return nil
	})
}

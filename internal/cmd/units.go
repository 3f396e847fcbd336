package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/compose"
	"github.com/cameronsjo/mooring/internal/unit"
)

// unitsCmd lists the units the descriptor produces.
var unitsCmd = &cobra.Command{
	Use:     "units",
	Aliases: []string{"ls"},
	Short:   "List the units the descriptor produces",
	Args:    cobra.NoArgs,
	RunE:    runUnits,
}

// showCmd prints one rendered unit.
var showCmd = &cobra.Command{
	Use:   "show <service>",
	Short: "Print one rendered unit",
	Long: `Render the unit of a single service and print it.

Pass the target name (e.g. myapp.docker-compose.target) to print the target.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(showCmd)
}

// unitRow is one line of the units table.
type unitRow struct {
	Service   string
	Unit      string
	Container string
	Image     string
	Depends   []string
}

// unitRows describes the unit every service of p becomes.
func unitRows(p *compose.Project, n unit.Naming) []unitRow {
	rows := make([]unitRow, 0, p.Len())
	for _, name := range p.Names() {
		svc, _ := p.Service(name)

		image := n.ImageName(name)
		if v, ok := svc.Get(compose.KeyImage); ok {
			image = v.Text()
		}

		rows = append(rows, unitRow{
			Service:   name,
			Unit:      n.UnitName(name),
			Container: n.ContainerName(name),
			Image:     image,
			Depends:   n.Dependencies(svc),
		})
	}
	return rows
}

func runUnits(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := resolveProject(cfg)
	if err != nil {
		return err
	}

	if p.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No services found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tUNIT\tCONTAINER\tIMAGE\tDEPENDS")
	fmt.Fprintln(w, "-------\t----\t---------\t-----\t-------")
	for _, r := range unitRows(p, cfg.Naming()) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Service, r.Unit, r.Container, r.Image, strings.Join(r.Depends, ", "))
	}

	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result, err := translate(cfg, logger)
	if err != nil {
		return err
	}

	naming := cfg.Naming()
	want := args[0]
	for _, f := range result.Files() {
		if f.Name == want || f.Name == naming.UnitName(want) {
			fmt.Fprint(cmd.OutOrStdout(), f.Content)
			return nil
		}
	}

	return fmt.Errorf("service %q not found in %s", want, cfg.File)
}

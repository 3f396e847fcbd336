package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/compose"
	"github.com/cameronsjo/mooring/internal/docker"
	"github.com/cameronsjo/mooring/internal/preflight"
	"github.com/cameronsjo/mooring/internal/ui"
)

// doctorCmd runs pre-flight checks.
var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Aliases: []string{"checkup"},
	Short:   "Pre-flight checks for systemd and Docker",
	Long: `Run diagnostic checks before installing units:

  - the engine binary, systemctl and systemd-analyze are installed
  - the output directory is writable
  - the descriptor translates cleanly
  - the Docker daemon answers
  - every image the descriptor references is present locally`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// checkReport tallies check outcomes.
type checkReport struct {
	passed, warned, failed int
}

func (r *checkReport) pass(format string, args ...any) {
	ui.Green.Fprintf(ui.Output(), "  * "+format+"\n", args...)
	r.passed++
}

func (r *checkReport) warn(format string, args ...any) {
	ui.Yellow.Fprintf(ui.Output(), "  ! "+format+"\n", args...)
	r.warned++
}

func (r *checkReport) fail(format string, args ...any) {
	ui.Red.Fprintf(ui.Output(), "  x "+format+"\n", args...)
	r.failed++
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ui.Info("Running pre-flight checks...")

	var report checkReport

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ui.Step(1, "Host")
	report.pass("Project %s at %s", cfg.Project, cfg.Root)

	checkBinaries(preflight.New(cfg.Engine.Binary), &report)

	if err := preflight.CheckWritable(cfg.OutputDir); err != nil {
		report.warn("Output directory: %v", err)
	} else {
		report.pass("Output directory %s is writable", cfg.OutputDir)
	}

	ui.Step(2, "Descriptor")
	var images []string
	if p, err := resolveProject(cfg); err != nil {
		report.fail("Descriptor: %v", err)
	} else if _, err := translate(cfg, logger); err != nil {
		report.fail("Translation: %v", err)
	} else {
		report.pass("Descriptor %s translates (%d services)", cfg.File, p.Len())
		images = imageRefs(p)
	}

	ui.Step(3, "Docker")
	err = withDockerClient(commandContext(cmd), func(ctx context.Context, client *docker.Client) error {
		checkDocker(ctx, client, images, &report)
		return nil
	})
	if err != nil {
		report.fail("Docker: %v", err)
	}

	fmt.Fprintln(ui.Output())
	ui.Info("%d passed, %d warnings, %d failed", report.passed, report.warned, report.failed)

	if report.failed > 0 {
		return fmt.Errorf("%d pre-flight check(s) failed", report.failed)
	}
	return nil
}

// checkBinaries reports missing binaries: required ones fail, optional ones warn.
func checkBinaries(checker *preflight.Checker, report *checkReport) {
	missing := make(map[string]bool)
	for _, bin := range checker.Missing() {
		missing[bin.Name] = true
		if bin.Required {
			report.fail("%s not found (%s)", bin.Name, bin.InstallHint)
		} else {
			report.warn("%s not found (%s)", bin.Name, bin.InstallHint)
		}
	}

	for _, bin := range checker.Binaries() {
		if !missing[bin.Name] {
			report.pass("%s is installed", bin.Name)
		}
	}
}

// checkDocker pings the daemon and looks up every image locally.
func checkDocker(ctx context.Context, client *docker.Client, images []string, report *checkReport) {
	if err := client.Ping(ctx); err != nil {
		report.fail("Docker is not running: %v", err)
		return
	}

	info, err := client.Info(ctx)
	if err != nil {
		report.warn("Docker info: %v", err)
	} else {
		report.pass("Docker %s is running (%d containers)", info.ServerVersion, info.Containers)
	}

	for _, ref := range images {
		ok, err := client.HasImage(ctx, ref)
		switch {
		case err != nil:
			report.warn("Image %s: %v", ref, err)
		case ok:
			report.pass("Image %s is present", ref)
		default:
			report.warn("Image %s is not pulled yet; the first start will pull it", ref)
		}
	}
}

// imageRefs returns the distinct image references of p in project order.
// Services that build their image are skipped.
func imageRefs(p *compose.Project) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, name := range p.Names() {
		svc, _ := p.Service(name)
		v, ok := svc.Get(compose.KeyImage)
		if !ok || seen[v.Text()] {
			continue
		}
		seen[v.Text()] = true
		refs = append(refs, v.Text())
	}
	return refs
}

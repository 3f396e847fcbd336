package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/cameronsjo/mooring/internal/config"
	"github.com/cameronsjo/mooring/internal/ui"
	"github.com/cameronsjo/mooring/internal/unit"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold mooring.yml",
	Long: `Create a mooring.yml next to the project's docker-compose.yml.

The project name defaults to the directory name and bare volumes are bound
under /srv/<project>. On a terminal each setting is prompted for; otherwise,
or with --yes, the defaults are written as is.

If no directory is specified, the current directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initYes   bool
	initForce bool
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing mooring.yml")
	rootCmd.AddCommand(initCmd)
}

// scaffold is the content of a new mooring.yml.
type scaffold struct {
	Project    string `yaml:"project"`
	MountRoot  string `yaml:"mount_root"`
	OutputDir  string `yaml:"output_dir"`
	RestartSec string `yaml:"restart_sec"`
	Engine     struct {
		Binary string `yaml:"binary"`
		Unit   string `yaml:"unit"`
	} `yaml:"engine"`
	Snapshots struct {
		Keep int `yaml:"keep"`
	} `yaml:"snapshots"`
}

// defaultScaffold returns the settings for a project in dir.
func defaultScaffold(dir, project string) scaffold {
	if project == "" {
		project = config.SanitizeProject(filepath.Base(dir))
	}

	var s scaffold
	s.Project = project
	s.MountRoot = "/srv/" + project
	s.OutputDir = "/etc/systemd/system"
	s.RestartSec = unit.DefaultRestartSec
	s.Engine.Binary = unit.DefaultEngine
	s.Engine.Unit = unit.DefaultEngineUnit
	s.Snapshots.Keep = 10
	return s
}

const scaffoldHeader = `# mooring configuration
# Every key can be overridden with a MOORING_* environment variable,
# e.g. MOORING_OUTPUT_DIR or MOORING_ENGINE_BINARY.

`

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absDir, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	targetDir = absDir

	ui.Moor("Mooring %s...", targetDir)

	if !hasComposeFile(targetDir) {
		ui.Warning("No %s in %s yet", config.ComposeFile, targetDir)
	}

	configPath := filepath.Join(targetDir, config.FileName)
	if _, err := os.Stat(configPath); err == nil && !initForce {
		ui.Warning("%s already exists, skipping (use --force to overwrite)", config.FileName)
		return nil
	}

	name, _ := cmd.Flags().GetString("project")
	project := config.SanitizeProject(name)
	if name != "" && project == "" {
		return fmt.Errorf("%w: %q", config.ErrInvalidProject, name)
	}
	settings := defaultScaffold(targetDir, project)

	if !initYes && isTerminal() {
		if err := promptScaffold(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), &settings); err != nil {
			return err
		}
	}

	content, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode %s: %w", config.FileName, err)
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", targetDir, err)
	}
	if err := os.WriteFile(configPath, append([]byte(scaffoldHeader), content...), 0644); err != nil {
		return fmt.Errorf("write %s: %w", config.FileName, err)
	}

	ui.Success("Created %s", configPath)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), "  1. Run 'mooring validate' to check the descriptor")
	fmt.Fprintln(cmd.OutOrStdout(), "  2. Run 'mooring generate -n' to preview the units")
	fmt.Fprintln(cmd.OutOrStdout(), "  3. Run 'mooring doctor' to verify your setup")

	return nil
}

func hasComposeFile(dir string) bool {
	for _, name := range []string{config.ComposeFile, config.ComposeFileAlt} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// promptScaffold asks for each setting, keeping the default on an empty answer.
func promptScaffold(r *bufio.Reader, w io.Writer, s *scaffold) error {
	project, err := promptString(r, w, "Project name", s.Project)
	if err != nil {
		return err
	}
	project = config.SanitizeProject(project)
	if project == "" {
		return fmt.Errorf("%w: project name is empty", config.ErrInvalidProject)
	}
	if s.MountRoot == "/srv/"+s.Project {
		s.MountRoot = "/srv/" + project
	}
	s.Project = project

	prompts := []struct {
		question string
		value    *string
	}{
		{"Mount root for bare volumes", &s.MountRoot},
		{"Unit output directory", &s.OutputDir},
		{"Container engine binary", &s.Engine.Binary},
	}

	for _, p := range prompts {
		answer, err := promptString(r, w, p.question, *p.value)
		if err != nil {
			return err
		}
		*p.value = answer
	}
	return nil
}

// promptString asks question and returns the trimmed answer, or def when the
// answer is empty.
func promptString(r *bufio.Reader, w io.Writer, question, def string) (string, error) {
	fmt.Fprintf(w, "%s [%s]: ", question, def)

	answer, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read user input: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

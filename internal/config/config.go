// Package config handles project discovery and configuration.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional mooring.yml at the project root, MOORING_* environment variables
// and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cameronsjo/mooring/internal/compose"
	"github.com/cameronsjo/mooring/internal/unit"
)

// File names looked up at the project root.
const (
	FileName         = "mooring.yml"
	ComposeFile      = "docker-compose.yml"
	ComposeFileAlt   = "docker-compose.yaml"
	OverrideFile     = "docker-compose.override.yml"
	EnvPrefix        = "MOORING"
	defaultOutputDir = "/etc/systemd/system"
)

var (
	// ErrRootNotFound indicates no project root above the working directory.
	ErrRootNotFound = errors.New("project root not found")

	// ErrInvalidProject indicates a project name with no usable characters.
	ErrInvalidProject = errors.New("invalid project name")
)

// Config holds the mooring project configuration.
type Config struct {
	// Root is the project root directory. Relative paths resolve against it.
	Root string `mapstructure:"-"`

	// ConfigFile is the configuration file that was read, if any.
	ConfigFile string `mapstructure:"-"`

	Project      string          `mapstructure:"project"`
	File         string          `mapstructure:"file"`
	Override     string          `mapstructure:"override"`
	MountRoot    string          `mapstructure:"mount_root"`
	OutputDir    string          `mapstructure:"output_dir"`
	UnitSuffix   string          `mapstructure:"unit_suffix"`
	TargetSuffix string          `mapstructure:"target_suffix"`
	RestartSec   string          `mapstructure:"restart_sec"`
	TemplatesDir string          `mapstructure:"templates_dir"`
	Engine       EngineConfig    `mapstructure:"engine"`
	Snapshots    SnapshotsConfig `mapstructure:"snapshots"`
	Log          LogConfig       `mapstructure:"log"`
}

// EngineConfig describes the container engine the units drive.
type EngineConfig struct {
	Binary string `mapstructure:"binary"`
	Unit   string `mapstructure:"unit"`
}

// SnapshotsConfig holds unit snapshot settings.
type SnapshotsConfig struct {
	Dir  string `mapstructure:"dir"`
	Keep int    `mapstructure:"keep"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options controls how Load discovers and reads configuration.
type Options struct {
	// ConfigFile is an explicit configuration file. Its directory becomes
	// the project root.
	ConfigFile string

	// WorkDir is where root discovery starts. Defaults to the current directory.
	WorkDir string

	// Flags are bound by name through FlagKeys when present.
	Flags *pflag.FlagSet
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"file":       "file",
	"project":    "project",
	"override":   "override",
	"mount-root": "mount_root",
	"output":     "output_dir",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// setDefaults registers every configuration key with its default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project", "")
	v.SetDefault("file", "")
	v.SetDefault("override", "")
	v.SetDefault("mount_root", "/srv/${project}")
	v.SetDefault("output_dir", defaultOutputDir)
	v.SetDefault("unit_suffix", unit.DefaultUnitSuffix)
	v.SetDefault("target_suffix", unit.DefaultTargetSuffix)
	v.SetDefault("restart_sec", unit.DefaultRestartSec)
	v.SetDefault("templates_dir", "")
	v.SetDefault("engine.binary", unit.DefaultEngine)
	v.SetDefault("engine.unit", unit.DefaultEngineUnit)
	v.SetDefault("snapshots.dir", "${root}/.mooring/snapshots")
	v.SetDefault("snapshots.keep", 10)
	v.SetDefault("log.level", "error")
	v.SetDefault("log.format", "text")
}

// FindRoot searches upward from dir for the project root: the first directory
// holding a docker-compose.yml, docker-compose.yaml or mooring.yml.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	for {
		for _, name := range []string{FileName, ComposeFile, ComposeFileAlt} {
			if isFile(filepath.Join(dir, name)) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w (no %s or %s)", ErrRootNotFound, ComposeFile, FileName)
}

// Load discovers the project root and returns the resolved Config.
// Without a discoverable root, the working directory is used.
func Load(opts Options) (*Config, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	v := viper.New()
	setDefaults(v)

	var root, configFile string
	if opts.ConfigFile != "" {
		abs, err := filepath.Abs(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("resolve config file: %w", err)
		}
		configFile = abs
		root = filepath.Dir(abs)
	} else {
		found, err := FindRoot(workDir)
		if err != nil {
			found, _ = filepath.Abs(workDir)
		}
		root = found
		if candidate := filepath.Join(root, FileName); isFile(candidate) {
			configFile = candidate
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Root = root
	cfg.ConfigFile = configFile

	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolve fills derived defaults and turns relative paths absolute.
func (c *Config) resolve() error {
	project := c.Project
	if project == "" {
		project = filepath.Base(c.Root)
	}
	c.Project = SanitizeProject(project)
	if c.Project == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProject, project)
	}

	vars := map[string]string{
		"project": c.Project,
		"root":    c.Root,
	}

	var err error
	for _, field := range []*string{&c.File, &c.Override, &c.MountRoot, &c.OutputDir, &c.TemplatesDir, &c.Snapshots.Dir} {
		if *field, err = compose.Interpolate(*field, vars); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	if c.File == "" {
		c.File = ComposeFile
		if !isFile(c.path(ComposeFile)) && isFile(c.path(ComposeFileAlt)) {
			c.File = ComposeFileAlt
		}
	}
	c.File = c.path(c.File)

	switch {
	case c.Override != "":
		c.Override = c.path(c.Override)
	case isFile(c.path(OverrideFile)):
		c.Override = c.path(OverrideFile)
	}

	if c.TemplatesDir != "" {
		c.TemplatesDir = c.path(c.TemplatesDir)
	}
	c.OutputDir = c.path(c.OutputDir)
	c.Snapshots.Dir = c.path(c.Snapshots.Dir)

	return nil
}

// path resolves p against the project root.
func (c *Config) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Naming returns the unit naming scheme for the project.
func (c *Config) Naming() unit.Naming {
	return unit.Naming{
		Project:      c.Project,
		UnitSuffix:   c.UnitSuffix,
		TargetSuffix: c.TargetSuffix,
		EngineUnit:   c.Engine.Unit,
	}
}

// LockDir returns the directory holding the unit directory lock.
func (c *Config) LockDir() string {
	return filepath.Join(filepath.Dir(c.Snapshots.Dir), "locks")
}

var invalidProjectChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// SanitizeProject lower-cases name and drops characters outside [a-z0-9_-].
func SanitizeProject(name string) string {
	return invalidProjectChars.ReplaceAllString(strings.ToLower(name), "")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

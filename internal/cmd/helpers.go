package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/mooring/internal/compose"
	"github.com/cameronsjo/mooring/internal/config"
	"github.com/cameronsjo/mooring/internal/docker"
	"github.com/cameronsjo/mooring/internal/fileutil"
	"github.com/cameronsjo/mooring/internal/snapshot"
	"github.com/cameronsjo/mooring/internal/unit"
)

// loadConfig loads the project configuration with the command's flags bound
// and builds the logger it asks for.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, config.SetupLogger(cfg.Log, cmd.ErrOrStderr()), nil
}

// loadDescriptors reads the descriptor and, when configured, the override.
func loadDescriptors(cfg *config.Config) (descriptor, override *compose.Project, err error) {
	descriptor, err = compose.LoadFile(cfg.File)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Override != "" {
		override, err = compose.LoadFile(cfg.Override)
		if err != nil {
			return nil, nil, fmt.Errorf("override: %w", err)
		}
	}

	return descriptor, override, nil
}

// resolveProject validates the descriptor, applies the override, checks the
// merged result and binds bare volumes under the mount root.
func resolveProject(cfg *config.Config) (*compose.Project, error) {
	descriptor, override, err := loadDescriptors(cfg)
	if err != nil {
		return nil, err
	}

	if err := compose.Validate(descriptor); err != nil {
		return nil, err
	}

	merged := compose.ApplyOverride(descriptor, override)
	if err := compose.ValidateResolved(merged); err != nil {
		return nil, err
	}
	return compose.MountVolumes(merged, cfg.MountRoot), nil
}

// newGenerator builds a unit generator from the configuration.
func newGenerator(cfg *config.Config, logger *slog.Logger) (*unit.Generator, error) {
	renderer, err := unit.NewRendererFromDir(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	return unit.NewGenerator(unit.Options{
		Naming:     cfg.Naming(),
		Engine:     cfg.Engine.Binary,
		RestartSec: cfg.RestartSec,
		Renderer:   renderer,
		Logger:     logger,
	})
}

// translate runs the whole pipeline for the configured project.
func translate(cfg *config.Config, logger *slog.Logger) (*unit.Result, error) {
	descriptor, override, err := loadDescriptors(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := newGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}

	return gen.Translate(descriptor, override, cfg.MountRoot)
}

// unitsFS returns the output directory as a filesystem.
func unitsFS(cfg *config.Config) billy.Filesystem {
	return osfs.New(cfg.OutputDir)
}

// snapshotStore returns the snapshot store for the output directory.
func snapshotStore(cfg *config.Config, units billy.Filesystem) *snapshot.Store {
	return snapshot.New(units, osfs.New(cfg.Snapshots.Dir), cfg.Snapshots.Keep)
}

// projectUnits lists the unit files in fs that belong to the project: the
// target and every service unit labelled with the project name. Units of a
// project whose name merely shares the prefix are left alone.
func projectUnits(fs billy.Filesystem, n unit.Naming) ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read unit directory: %w", err)
	}

	prefix := n.Project + "-"
	suffix := "." + n.UnitSuffix
	marker := fmt.Sprintf("com.docker.compose.project=%s\"", n.Project)

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		if name == n.TargetName() {
			names = append(names, name)
			continue
		}
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}

		data, ok, err := fileutil.ReadFile(fs, name)
		if err != nil {
			return nil, err
		}
		if ok && strings.Contains(string(data), marker) {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

// withDockerClient executes a function with a Docker client, handling connection and cleanup.
func withDockerClient(ctx context.Context, fn func(ctx context.Context, client *docker.Client) error) error {
	client, err := docker.NewClient()
	if err != nil {
		return fmt.Errorf("connect to docker: %w", err)
	}
	defer client.Close()

	return fn(ctx, client)
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalSymlinks resolves symlinks for path comparison (macOS /var -> /private/var).
func evalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newProject creates a project directory named name holding a descriptor.
func newProject(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join(evalSymlinks(t, t.TempDir()), name)
	writeFile(t, filepath.Join(root, ComposeFile), "web:\n  image: nginx\n")
	return root
}

func TestFindRoot(t *testing.T) {
	tests := []struct {
		name   string
		marker string
	}{
		{name: "compose file", marker: ComposeFile},
		{name: "compose yaml", marker: ComposeFileAlt},
		{name: "config file", marker: FileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := evalSymlinks(t, t.TempDir())
			writeFile(t, filepath.Join(root, tt.marker), "")

			sub := filepath.Join(root, "sub", "deep")
			require.NoError(t, os.MkdirAll(sub, 0755))

			got, err := FindRoot(sub)
			require.NoError(t, err)
			assert.Equal(t, root, got)
		})
	}
}

func TestFindRoot_DirectoryNamedLikeMarker(t *testing.T) {
	root := evalSymlinks(t, t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(root, ComposeFile), 0755))

	_, err := FindRoot(root)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestLoad_Defaults(t *testing.T) {
	root := newProject(t, "My.App")

	cfg, err := Load(Options{WorkDir: root})
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, "myapp", cfg.Project)
	assert.Equal(t, filepath.Join(root, ComposeFile), cfg.File)
	assert.Empty(t, cfg.Override)
	assert.Equal(t, "/srv/myapp", cfg.MountRoot)
	assert.Equal(t, "/etc/systemd/system", cfg.OutputDir)
	assert.Equal(t, "docker-compose.service", cfg.UnitSuffix)
	assert.Equal(t, "docker-compose.target", cfg.TargetSuffix)
	assert.Equal(t, "10s", cfg.RestartSec)
	assert.Equal(t, "/usr/bin/docker", cfg.Engine.Binary)
	assert.Equal(t, "docker.service", cfg.Engine.Unit)
	assert.Equal(t, filepath.Join(root, ".mooring", "snapshots"), cfg.Snapshots.Dir)
	assert.Equal(t, 10, cfg.Snapshots.Keep)
	assert.Equal(t, filepath.Join(root, ".mooring", "locks"), cfg.LockDir())
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	n := cfg.Naming()
	assert.Equal(t, "myapp-web.docker-compose.service", n.UnitName("web"))
}

func TestLoad_ConfigFile(t *testing.T) {
	root := newProject(t, "shop")
	writeFile(t, filepath.Join(root, FileName), `
project: store
mount_root: /data/${project}
output_dir: units
unit_suffix: service
restart_sec: 30s
templates_dir: templates
engine:
  binary: /usr/local/bin/docker
snapshots:
  keep: 3
log:
  level: debug
  format: json
`)
	sub := filepath.Join(root, "nested")
	require.NoError(t, os.MkdirAll(sub, 0755))

	cfg, err := Load(Options{WorkDir: sub})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, FileName), cfg.ConfigFile)
	assert.Equal(t, "store", cfg.Project)
	assert.Equal(t, "/data/store", cfg.MountRoot)
	assert.Equal(t, filepath.Join(root, "units"), cfg.OutputDir)
	assert.Equal(t, "service", cfg.UnitSuffix)
	assert.Equal(t, "30s", cfg.RestartSec)
	assert.Equal(t, filepath.Join(root, "templates"), cfg.TemplatesDir)
	assert.Equal(t, "/usr/local/bin/docker", cfg.Engine.Binary)
	assert.Equal(t, "docker.service", cfg.Engine.Unit)
	assert.Equal(t, 3, cfg.Snapshots.Keep)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := evalSymlinks(t, t.TempDir())
	path := filepath.Join(dir, "custom.yml")
	writeFile(t, path, "project: blog\nfile: stack.yml\n")

	cfg, err := Load(Options{ConfigFile: path, WorkDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, "blog", cfg.Project)
	assert.Equal(t, filepath.Join(dir, "stack.yml"), cfg.File)
}

func TestLoad_BadConfigFile(t *testing.T) {
	root := newProject(t, "shop")
	writeFile(t, filepath.Join(root, FileName), "project: [unterminated\n")

	_, err := Load(Options{WorkDir: root})
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	root := newProject(t, "shop")
	t.Setenv("MOORING_PROJECT", "envshop")
	t.Setenv("MOORING_ENGINE_BINARY", "/opt/docker")
	t.Setenv("MOORING_MOUNT_ROOT", "/mnt/${project}")

	cfg, err := Load(Options{WorkDir: root})
	require.NoError(t, err)

	assert.Equal(t, "envshop", cfg.Project)
	assert.Equal(t, "/opt/docker", cfg.Engine.Binary)
	assert.Equal(t, "/mnt/envshop", cfg.MountRoot)
}

func TestLoad_Flags(t *testing.T) {
	root := newProject(t, "shop")
	writeFile(t, filepath.Join(root, FileName), "project: fromfile\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("project", "p", "", "")
	flags.String("output", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"-p", "fromflag", "--output", "/tmp/units"}))

	cfg, err := Load(Options{WorkDir: root, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "fromflag", cfg.Project)
	assert.Equal(t, "/tmp/units", cfg.OutputDir)
	assert.Equal(t, "error", cfg.Log.Level, "unset flag keeps the default")
}

func TestLoad_OverrideDiscovery(t *testing.T) {
	root := newProject(t, "shop")
	writeFile(t, filepath.Join(root, OverrideFile), "web:\n  hostname: web\n")

	cfg, err := Load(Options{WorkDir: root})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, OverrideFile), cfg.Override)
}

func TestLoad_ComposeYamlFallback(t *testing.T) {
	root := filepath.Join(evalSymlinks(t, t.TempDir()), "shop")
	writeFile(t, filepath.Join(root, ComposeFileAlt), "web:\n  image: nginx\n")

	cfg, err := Load(Options{WorkDir: root})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ComposeFileAlt), cfg.File)
}

func TestLoad_InvalidProject(t *testing.T) {
	root := newProject(t, "shop")
	writeFile(t, filepath.Join(root, FileName), "project: '!!!'\n")

	_, err := Load(Options{WorkDir: root})
	assert.ErrorIs(t, err, ErrInvalidProject)
}

func TestLoad_MissingVariable(t *testing.T) {
	root := newProject(t, "shop")
	writeFile(t, filepath.Join(root, FileName), "mount_root: /srv/${nope}\n")

	_, err := Load(Options{WorkDir: root})
	assert.ErrorContains(t, err, "missing variables: ${nope}")
}

func TestSanitizeProject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"myapp", "myapp"},
		{"My App", "myapp"},
		{"web_app-2", "web_app-2"},
		{"Hello.World!", "helloworld"},
		{"...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeProject(tt.in))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("text at warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger(LogConfig{Level: "warn", Format: "text"}, &buf)

		logger.Info("hidden")
		logger.Warn("shown", "key", "tty")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=shown")
		assert.Contains(t, out, "key=tty")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger(LogConfig{Level: "debug", Format: "JSON"}, &buf)

		logger.Debug("details")
		assert.Contains(t, buf.String(), `"msg":"details"`)
	})

	t.Run("unknown level is info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger(LogConfig{Level: "loud"}, &buf)

		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

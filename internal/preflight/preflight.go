// Package preflight provides pre-flight validation for required binaries and system checks.
package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// BinaryCheck represents a binary and its purpose.
type BinaryCheck struct {
	Name        string
	Required    bool   // false = warning only
	InstallHint string // e.g., "apt install docker.io" or "https://..."
}

// systemBinaries are needed to run the generated units.
var systemBinaries = []BinaryCheck{
	{
		Name:        "systemctl",
		Required:    true,
		InstallHint: "Generated units need systemd: https://systemd.io",
	},
	{
		Name:        "systemd-analyze",
		Required:    false,
		InstallHint: "Used to verify generated units; ships with systemd",
	},
}

// Checker looks up the binaries a project's units depend on.
type Checker struct {
	binaries []BinaryCheck
	lookPath func(string) (string, error)
}

// New returns a Checker for units driving the given engine binary.
func New(engine string) *Checker {
	engineCheck := BinaryCheck{
		Name:        engine,
		Required:    true,
		InstallHint: "Install Docker: https://docs.docker.com/get-docker/",
	}

	return &Checker{
		binaries: append([]BinaryCheck{engineCheck}, systemBinaries...),
		lookPath: exec.LookPath,
	}
}

// Binaries returns every binary the Checker looks for.
func (c *Checker) Binaries() []BinaryCheck {
	return append([]BinaryCheck{}, c.binaries...)
}

// Missing returns the binaries that cannot be found.
func (c *Checker) Missing() []BinaryCheck {
	var missing []BinaryCheck
	for _, bin := range c.binaries {
		if _, err := c.lookPath(bin.Name); err != nil {
			missing = append(missing, bin)
		}
	}
	return missing
}

// CheckAll performs all binary checks and returns warnings and errors.
// Errors are for missing required binaries, warnings are for missing optional binaries.
func (c *Checker) CheckAll() (warnings []string, errs []string) {
	for _, bin := range c.Missing() {
		line := bin.Name + ": " + bin.InstallHint
		if bin.Required {
			errs = append(errs, line)
		} else {
			warnings = append(warnings, line)
		}
	}
	return warnings, errs
}

// CheckWritable reports whether units can be written to dir. A directory
// that does not exist yet is checked through its closest existing parent.
func CheckWritable(dir string) error {
	dir = filepath.Clean(dir)
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", dir, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fmt.Errorf("no existing parent for %s", dir)
		}
		dir = parent
	}

	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return nil
}

// Package snapshot keeps copies of a project's unit files so a generate run
// can be rolled back.
//
// A snapshot is a flat directory of unit files under the snapshots root:
//
//	snapshot-20250102-150405.000000000-1a2b3c4d/
//	  myapp-web.docker-compose.service
//	  myapp.docker-compose.target
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/cameronsjo/mooring/internal/fileutil"
)

const (
	// SnapshotPrefix is the prefix for snapshot directory names.
	SnapshotPrefix = "snapshot-"
	// BackupPrefix marks the snapshot taken automatically before a rollback.
	BackupPrefix = "pre-rollback-"
	// DateFormatPrecise includes nanoseconds to prevent same-second collisions.
	DateFormatPrecise = "20060102-150405.000000000"
	// DefaultKeep is the number of snapshots retained when none is configured.
	DefaultKeep = 10
)

// ErrNotFound indicates a snapshot name that does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Info holds metadata about a snapshot.
type Info struct {
	Name    string
	Created time.Time
	Files   []string
}

// Store manages snapshots of unit files. units is the unit output
// directory, snaps the snapshots root.
type Store struct {
	units billy.Filesystem
	snaps billy.Filesystem
	keep  int
	now   func() time.Time
}

// New returns a Store retaining at most keep snapshots.
func New(units, snaps billy.Filesystem, keep int) *Store {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Store{units: units, snaps: snaps, keep: keep, now: time.Now}
}

// Create copies the listed unit files into a new snapshot. Files missing
// from the unit directory are skipped. Returns the snapshot name, or an
// empty string if there was nothing to snapshot.
func (s *Store) Create(files []string) (string, error) {
	return s.create(SnapshotPrefix, files)
}

func (s *Store) create(prefix string, files []string) (string, error) {
	contents := make(map[string][]byte)
	for _, name := range files {
		data, ok, err := fileutil.ReadFile(s.units, name)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		if ok {
			contents[name] = data
		}
	}
	if len(contents) == 0 {
		return "", nil
	}

	name := prefix + s.now().Format(DateFormatPrecise) + "-" + uuid.NewString()[:8]
	for file, data := range contents {
		if err := fileutil.WriteFile(s.snaps, path.Join(name, file), data, 0644); err != nil {
			// Clean up partial snapshot on error
			if cleanupErr := util.RemoveAll(s.snaps, name); cleanupErr != nil {
				return "", fmt.Errorf("write snapshot: %w (cleanup also failed: %v)", err, cleanupErr)
			}
			return "", fmt.Errorf("write snapshot: %w", err)
		}
	}

	if err := s.Cleanup(); err != nil {
		return name, fmt.Errorf("cleanup old snapshots: %w", err)
	}

	return name, nil
}

// List returns available snapshots sorted by date (newest first).
func (s *Store) List() ([]Info, error) {
	entries, err := s.snaps.ReadDir("/")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshots directory: %w", err)
	}

	var snapshots []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		created, ok := parseCreated(entry.Name())
		if !ok {
			continue
		}

		files, err := s.files(entry.Name())
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, Info{
			Name:    entry.Name(),
			Created: created,
			Files:   files,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Created.After(snapshots[j].Created)
	})

	return snapshots, nil
}

// Latest returns the newest snapshot that is not a rollback backup.
func (s *Store) Latest() (Info, error) {
	snapshots, err := s.List()
	if err != nil {
		return Info{}, err
	}
	for _, snap := range snapshots {
		if strings.HasPrefix(snap.Name, SnapshotPrefix) {
			return snap, nil
		}
	}
	return Info{}, ErrNotFound
}

// Restore replaces the project's unit files with those of the named
// snapshot. current lists the unit files the project has now; they are
// backed up first and those absent from the snapshot are removed.
// Returns the restored file names.
func (s *Store) Restore(name string, current []string) ([]string, error) {
	files, err := s.files(name)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if _, err := s.create(BackupPrefix, current); err != nil {
		return nil, fmt.Errorf("create pre-rollback backup: %w", err)
	}

	keep := make(map[string]bool, len(files))
	for _, file := range files {
		data, _, err := fileutil.ReadFile(s.snaps, path.Join(name, file))
		if err != nil {
			return nil, fmt.Errorf("read snapshot file %s: %w", file, err)
		}
		if err := fileutil.WriteFile(s.units, file, data, 0644); err != nil {
			return nil, fmt.Errorf("restore %s: %w", file, err)
		}
		keep[file] = true
	}

	for _, file := range current {
		if keep[file] {
			continue
		}
		if err := s.units.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove %s: %w", file, err)
		}
	}

	return files, nil
}

// Cleanup removes snapshots beyond the retention limit.
// Continues deleting even if individual removals fail, returning a summary of all errors.
func (s *Store) Cleanup() error {
	snapshots, err := s.List()
	if err != nil {
		return err
	}

	if len(snapshots) <= s.keep {
		return nil
	}

	var errs []string
	for _, snap := range snapshots[s.keep:] {
		if err := util.RemoveAll(s.snaps, snap.Name); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", snap.Name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to remove %d snapshot(s): %s", len(errs), strings.Join(errs, "; "))
	}

	return nil
}

// files returns the sorted file names of a snapshot, or nil if it does not exist.
func (s *Store) files(name string) ([]string, error) {
	if _, ok := parseCreated(name); !ok || strings.Contains(name, "/") {
		return nil, nil
	}

	entries, err := s.snaps.ReadDir(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// parseCreated extracts the creation time from a snapshot name.
func parseCreated(name string) (time.Time, bool) {
	var rest string
	switch {
	case strings.HasPrefix(name, SnapshotPrefix):
		rest = strings.TrimPrefix(name, SnapshotPrefix)
	case strings.HasPrefix(name, BackupPrefix):
		rest = strings.TrimPrefix(name, BackupPrefix)
	default:
		return time.Time{}, false
	}

	if len(rest) < len(DateFormatPrecise) {
		return time.Time{}, false
	}
	created, err := time.Parse(DateFormatPrecise, rest[:len(DateFormatPrecise)])
	if err != nil {
		return time.Time{}, false
	}
	return created, true
}

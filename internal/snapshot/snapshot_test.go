package snapshot

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a Store over memory filesystems with a clock that
// advances one second per snapshot.
func newTestStore(t *testing.T, keep int) (*Store, billy.Filesystem) {
	t.Helper()
	units := memfs.New()
	s := New(units, memfs.New(), keep)

	clock := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s, units
}

func writeUnit(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0644))
}

func readUnit(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestCreate(t *testing.T) {
	s, units := newTestStore(t, 5)
	writeUnit(t, units, "myapp-web.docker-compose.service", "web v1")
	writeUnit(t, units, "myapp.docker-compose.target", "target v1")
	writeUnit(t, units, "other.service", "not ours")

	name, err := s.Create([]string{"myapp-web.docker-compose.service", "myapp.docker-compose.target", "myapp-gone.docker-compose.service"})
	require.NoError(t, err)
	assert.Contains(t, name, SnapshotPrefix+"20250102-150406.000000000-")

	snaps, err := s.List()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, name, snaps[0].Name)
	assert.Equal(t, []string{"myapp-web.docker-compose.service", "myapp.docker-compose.target"}, snaps[0].Files)
	assert.Equal(t, time.Date(2025, 1, 2, 15, 4, 6, 0, time.UTC), snaps[0].Created)
}

func TestCreate_NothingToSnapshot(t *testing.T) {
	s, _ := newTestStore(t, 5)

	name, err := s.Create([]string{"myapp-web.docker-compose.service"})
	require.NoError(t, err)
	assert.Empty(t, name)

	snaps, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestList_SortedNewestFirst(t *testing.T) {
	s, units := newTestStore(t, 10)
	writeUnit(t, units, "a.service", "a")

	var names []string
	for i := 0; i < 3; i++ {
		name, err := s.Create([]string{"a.service"})
		require.NoError(t, err)
		names = append(names, name)
	}

	snaps, err := s.List()
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, names[2], snaps[0].Name)
	assert.Equal(t, names[0], snaps[2].Name)
}

func TestList_IgnoresForeignEntries(t *testing.T) {
	s, units := newTestStore(t, 10)
	writeUnit(t, units, "a.service", "a")
	_, err := s.Create([]string{"a.service"})
	require.NoError(t, err)

	require.NoError(t, s.snaps.MkdirAll("random-dir", 0755))
	require.NoError(t, s.snaps.MkdirAll("snapshot-garbage", 0755))
	writeUnit(t, s.snaps, "stray-file", "x")

	snaps, err := s.List()
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestCleanup(t *testing.T) {
	s, units := newTestStore(t, 2)
	writeUnit(t, units, "a.service", "a")

	var names []string
	for i := 0; i < 4; i++ {
		name, err := s.Create([]string{"a.service"})
		require.NoError(t, err)
		names = append(names, name)
	}

	snaps, err := s.List()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, names[3], snaps[0].Name)
	assert.Equal(t, names[2], snaps[1].Name)
}

func TestRestore(t *testing.T) {
	s, units := newTestStore(t, 10)
	writeUnit(t, units, "myapp-web.docker-compose.service", "web v1")
	writeUnit(t, units, "myapp.docker-compose.target", "target v1")

	v1, err := s.Create([]string{"myapp-web.docker-compose.service", "myapp.docker-compose.target"})
	require.NoError(t, err)

	// a later generate changes web and adds db
	writeUnit(t, units, "myapp-web.docker-compose.service", "web v2")
	writeUnit(t, units, "myapp-db.docker-compose.service", "db v2")
	writeUnit(t, units, "myapp.docker-compose.target", "target v2")
	current := []string{"myapp-db.docker-compose.service", "myapp-web.docker-compose.service", "myapp.docker-compose.target"}

	restored, err := s.Restore(v1, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"myapp-web.docker-compose.service", "myapp.docker-compose.target"}, restored)

	assert.Equal(t, "web v1", readUnit(t, units, "myapp-web.docker-compose.service"))
	assert.Equal(t, "target v1", readUnit(t, units, "myapp.docker-compose.target"))
	_, err = units.Stat("myapp-db.docker-compose.service")
	assert.Error(t, err, "units absent from the snapshot are removed")

	// the pre-rollback backup holds the v2 files
	snaps, err := s.List()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Contains(t, snaps[0].Name, BackupPrefix)
	assert.Len(t, snaps[0].Files, 3)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, v1, latest.Name)
}

func TestRestore_NotFound(t *testing.T) {
	s, _ := newTestStore(t, 10)

	for _, name := range []string{"snapshot-20250102-150405.000000000-deadbeef", "nope", "../etc"} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			_, err := s.Restore(name, nil)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLatest_Empty(t *testing.T) {
	s, _ := newTestStore(t, 10)

	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseCreated(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"snapshot-20250102-150405.000000000-1a2b3c4d", true},
		{"pre-rollback-20250102-150405.000000000-1a2b3c4d", true},
		{"snapshot-2025", false},
		{"snapshot-garbage-garbage-garbage-garbage", false},
		{"other-20250102-150405.000000000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseCreated(tt.name)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNew_DefaultKeep(t *testing.T) {
	s := New(memfs.New(), memfs.New(), 0)
	assert.Equal(t, DefaultKeep, s.keep)
}

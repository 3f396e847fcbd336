package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/mooring/internal/compose"
)

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		wantErr    error
		contains   []string
	}{
		{
			name:       "valid",
			descriptor: exampleDescriptor,
			contains:   []string{"2 services, 0 warnings"},
		},
		{
			name:       "unsupported key",
			descriptor: "web:\n  image: app\n  devices:\n    - /dev/sda\n",
			contains:   []string{"unsupported option 'devices'", "1 services, 1 warnings"},
		},
		{
			name:       "host volume",
			descriptor: "web:\n  image: app\n  volumes:\n    - \"/srv:/data\"\n",
			wantErr:    compose.ErrInvalidVolumeBinding,
		},
		{
			name:       "external links",
			descriptor: "web:\n  image: app\n  external_links:\n    - redis\n",
			wantErr:    compose.ErrUnresolvableDependency,
		},
		{
			name:       "neither image nor build",
			descriptor: "web:\n  command: sleep 1\n",
			wantErr:    compose.ErrConflictingImageSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, tt.descriptor)

			output, err := executeCmd(t, "validate", "-p", "myapp")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "validation failed")
				return
			}

			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestValidateCmd_LintAlias(t *testing.T) {
	setupProject(t, exampleDescriptor)

	_, err := executeCmd(t, "lint")
	assert.NoError(t, err)
}

func TestValidateCmd_FileFlag(t *testing.T) {
	dir := setupProject(t, exampleDescriptor)
	writeFile(t, filepath.Join(dir, "other.yml"), "web:\n  image: app\n  ports:\n    - \"80:80\"\n")

	_, err := executeCmd(t, "validate", "-f", "other.yml")
	assert.ErrorIs(t, err, compose.ErrInvalidPortBinding)
}

package update

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"", true},
		{"dev", true},
		{"v1.2.3-dirty", true},
		{"1.2.3", false},
		{"v0.4.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDevelopment(tt.version))
		})
	}
}

func TestDevelopmentBuildRefused(t *testing.T) {
	_, _, err := CheckForUpdate(context.Background(), "dev")
	assert.ErrorIs(t, err, ErrDevelopmentBuild)

	_, err = Update(context.Background(), "dev")
	assert.ErrorIs(t, err, ErrDevelopmentBuild)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "cameronsjo/mooring", Slug())
}

func TestGetPlatformInfo(t *testing.T) {
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, GetPlatformInfo())
}

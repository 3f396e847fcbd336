// Package update provides self-update functionality for mooring.
package update

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
)

const (
	// Repository owner and name for GitHub releases.
	repoOwner = "cameronsjo"
	repoName  = "mooring"
)

// ErrDevelopmentBuild indicates a binary without a release version.
var ErrDevelopmentBuild = errors.New("development build cannot be updated")

// Release contains information about an available update.
type Release struct {
	Version     string
	ReleaseURL  string
	PublishedAt string
	Changelog   string
}

// Slug returns the owner/name of the release repository.
func Slug() string {
	return repoOwner + "/" + repoName
}

// IsDevelopment reports whether version is not a release version.
func IsDevelopment(version string) bool {
	v := strings.TrimPrefix(version, "v")
	return v == "" || v == "dev" || strings.HasSuffix(v, "-dirty")
}

// latest looks up the newest release. found is false when the repository
// has no release for this platform.
func latest(ctx context.Context) (*selfupdate.Updater, *selfupdate.Release, bool, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, nil, false, fmt.Errorf("creating update source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source: source,
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("creating updater: %w", err)
	}

	rel, found, err := updater.DetectLatest(ctx, selfupdate.NewRepositorySlug(repoOwner, repoName))
	if err != nil {
		return nil, nil, false, fmt.Errorf("detecting latest version: %w", err)
	}

	return updater, rel, found, nil
}

func toRelease(rel *selfupdate.Release) *Release {
	return &Release{
		Version:     rel.Version(),
		ReleaseURL:  rel.URL,
		PublishedAt: rel.PublishedAt.Format("2006-01-02"),
		Changelog:   rel.ReleaseNotes,
	}
}

// CheckForUpdate checks if a newer version is available.
func CheckForUpdate(ctx context.Context, currentVersion string) (*Release, bool, error) {
	if IsDevelopment(currentVersion) {
		return nil, false, ErrDevelopmentBuild
	}

	_, rel, found, err := latest(ctx)
	if err != nil {
		return nil, false, err
	}
	if !found || rel.LessOrEqual(currentVersion) {
		return nil, false, nil
	}

	return toRelease(rel), true, nil
}

// Update downloads and installs the latest version. A nil release means the
// binary is already up to date.
func Update(ctx context.Context, currentVersion string) (*Release, error) {
	if IsDevelopment(currentVersion) {
		return nil, ErrDevelopmentBuild
	}

	updater, rel, found, err := latest(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no releases found for %s", Slug())
	}
	if rel.LessOrEqual(currentVersion) {
		return nil, nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, fmt.Errorf("getting executable path: %w", err)
	}

	if err := updater.UpdateTo(ctx, rel, exe); err != nil {
		return nil, fmt.Errorf("updating binary: %w", err)
	}

	return toRelease(rel), nil
}

// GetPlatformInfo returns the current platform information.
func GetPlatformInfo() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

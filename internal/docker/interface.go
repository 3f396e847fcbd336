package docker

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/system"
)

// API defines the Docker client operations mooring uses.
// This interface enables mocking for unit tests without requiring a running Docker daemon.
type API interface {
	// Ping tests the connection to the Docker daemon.
	Ping(ctx context.Context) (types.Ping, error)

	// Info returns system-wide information about the Docker daemon.
	Info(ctx context.Context) (system.Info, error)

	// ImageList returns the locally available images.
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)

	// ContainerList returns a list of containers.
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)

	// Close closes the client connection.
	Close() error
}

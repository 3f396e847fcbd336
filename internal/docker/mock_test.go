package docker

import (
	"context"
	"errors"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/system"
)

// Common test errors.
var (
	errMockPing  = errors.New("mock: ping failed")
	errMockInfo  = errors.New("mock: info failed")
	errMockList  = errors.New("mock: container list failed")
	errMockImage = errors.New("mock: image list failed")
)

// MockAPI is a mock implementation of API for testing.
type MockAPI struct {
	// Function overrides for each method
	PingFunc          func(ctx context.Context) (types.Ping, error)
	InfoFunc          func(ctx context.Context) (system.Info, error)
	ImageListFunc     func(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ContainerListFunc func(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	CloseFunc         func() error

	// Call tracking
	PingCalls          int
	InfoCalls          int
	ImageListCalls     int
	ContainerListCalls int
	CloseCalls         int

	// Last options seen
	LastImageList     image.ListOptions
	LastContainerList container.ListOptions
}

var _ API = (*MockAPI)(nil)

// NewMockAPI creates a new mock with default no-op implementations.
func NewMockAPI() *MockAPI {
	return &MockAPI{}
}

// Ping implements API.
func (m *MockAPI) Ping(ctx context.Context) (types.Ping, error) {
	m.PingCalls++
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return types.Ping{APIVersion: "1.47"}, nil
}

// Info implements API.
func (m *MockAPI) Info(ctx context.Context) (system.Info, error) {
	m.InfoCalls++
	if m.InfoFunc != nil {
		return m.InfoFunc(ctx)
	}
	return system.Info{ServerVersion: "28.5.2"}, nil
}

// ImageList implements API.
func (m *MockAPI) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	m.ImageListCalls++
	m.LastImageList = options
	if m.ImageListFunc != nil {
		return m.ImageListFunc(ctx, options)
	}
	return []image.Summary{}, nil
}

// ContainerList implements API.
func (m *MockAPI) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	m.ContainerListCalls++
	m.LastContainerList = options
	if m.ContainerListFunc != nil {
		return m.ContainerListFunc(ctx, options)
	}
	return []container.Summary{}, nil
}

// Close implements API.
func (m *MockAPI) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

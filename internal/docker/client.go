package docker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/system"
	"github.com/docker/docker/client"
)

// Labels the generated units put on every container.
const (
	LabelProject         = "com.docker.compose.project"
	LabelService         = "com.docker.compose.service"
	LabelContainerNumber = "com.docker.compose.container-number"
)

// pingTimeout bounds the daemon reachability check.
const pingTimeout = 5 * time.Second

// Client wraps the Docker SDK client.
type Client struct {
	api API
}

// NewClient creates a new Docker client connection.
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	return &Client{api: cli}, nil
}

// NewClientWithAPI creates a new Docker client with a custom API implementation.
// This is primarily used for testing with mock implementations.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// Ping tests the connection to the Docker daemon.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker: %w", err)
	}

	return nil
}

// Info returns system-wide information about the Docker daemon.
func (c *Client) Info(ctx context.Context) (system.Info, error) {
	info, err := c.api.Info(ctx)
	if err != nil {
		return system.Info{}, fmt.Errorf("docker info: %w", err)
	}
	return info, nil
}

// HasImage reports whether an image matching ref is present locally.
func (c *Client) HasImage(ctx context.Context, ref string) (bool, error) {
	images, err := c.api.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return false, fmt.Errorf("list images %s: %w", ref, err)
	}
	return len(images) > 0, nil
}

// ContainerInfo holds summary information about a project container.
type ContainerInfo struct {
	ID      string
	Name    string
	Service string
	Image   string
	State   string
	Status  string
	Created time.Time
	Ports   []string
}

// Running reports whether the container is running.
func (c ContainerInfo) Running() bool {
	return c.State == "running"
}

// ProjectContainers returns every container, running or not, labelled with
// the compose project, sorted by service name.
func (c *Client) ProjectContainers(ctx context.Context, project string) ([]ContainerInfo, error) {
	containers, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelProject+"="+project)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		name := ""
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}

		ports := make([]string, 0, len(ctr.Ports))
		for _, p := range ctr.Ports {
			if p.PublicPort > 0 {
				ports = append(ports, fmt.Sprintf("%d:%d/%s", p.PublicPort, p.PrivatePort, p.Type))
			} else {
				ports = append(ports, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
			}
		}

		id := ctr.ID
		if len(id) > 12 {
			id = id[:12]
		}

		result = append(result, ContainerInfo{
			ID:      id,
			Name:    name,
			Service: ctr.Labels[LabelService],
			Image:   ctr.Image,
			State:   string(ctr.State),
			Status:  ctr.Status,
			Created: time.Unix(ctr.Created, 0),
			Ports:   ports,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Service != result[j].Service {
			return result[i].Service < result[j].Service
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Close closes the Docker client connection.
func (c *Client) Close() error {
	if c.api != nil {
		return c.api.Close()
	}
	return nil
}

package unit

import (
	"fmt"

	"github.com/cameronsjo/mooring/internal/compose"
)

// Naming defaults.
const (
	DefaultUnitSuffix   = "docker-compose.service"
	DefaultTargetSuffix = "docker-compose.target"
	DefaultEngineUnit   = "docker.service"
)

// Naming derives unit, container and image names from the project name.
// Dependency resolution and option mapping both go through the same Naming
// so the names they produce always agree.
type Naming struct {
	Project      string
	UnitSuffix   string
	TargetSuffix string

	// EngineUnit is the container engine's own unit, depended on by services
	// without dependencies of their own.
	EngineUnit string
}

// NewNaming returns a Naming for project with the default suffixes.
func NewNaming(project string) Naming {
	return Naming{
		Project:      project,
		UnitSuffix:   DefaultUnitSuffix,
		TargetSuffix: DefaultTargetSuffix,
		EngineUnit:   DefaultEngineUnit,
	}
}

// UnitName returns the unit file name for service.
func (n Naming) UnitName(service string) string {
	return fmt.Sprintf("%s-%s.%s", n.Project, service, n.UnitSuffix)
}

// ContainerName returns the container name the unit runs service as.
func (n Naming) ContainerName(service string) string {
	return fmt.Sprintf("%s-%s-1", n.Project, service)
}

// ImageName returns the image name used for services declaring build.
func (n Naming) ImageName(service string) string {
	return fmt.Sprintf("%s-%s", n.Project, service)
}

// TargetName returns the aggregate target file name.
func (n Naming) TargetName() string {
	return fmt.Sprintf("%s.%s", n.Project, n.TargetSuffix)
}

// Dependencies returns the units svc must start after and requires. A service
// without dependencies depends on the container engine unit.
func (n Naming) Dependencies(svc *compose.ServiceConfig) []string {
	deps := svc.Dependencies()
	if len(deps) == 0 {
		return []string{n.EngineUnit}
	}

	units := make([]string, len(deps))
	for i, dep := range deps {
		units[i] = n.UnitName(dep)
	}
	return units
}

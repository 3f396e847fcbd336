package compose

import (
	"strings"

	"github.com/docker/go-connections/nat"
)

// Validate checks every service of p against the shapes a generated unit can
// express safely. Services are checked in document order and the first
// failure is returned as a *ServiceError.
//
// Validate runs on the descriptor before overrides are applied: an override
// is trusted to bind host ports and host paths, the descriptor is not.
func Validate(p *Project) error {
	for _, name := range p.names {
		if err := validateService(p, name, p.services[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateService(p *Project, name string, svc *ServiceConfig) error {
	for _, port := range svc.Items(KeyPorts) {
		if HasHostBinding(port) {
			return NewServiceError(name, ErrInvalidPortBinding, "ports entry %q binds a host port", port)
		}
	}

	for _, vol := range svc.Items(KeyVolumes) {
		if strings.Contains(vol, ":") {
			return NewServiceError(name, ErrInvalidVolumeBinding, "volumes entry %q is bound to a host path", vol)
		}
	}

	if svc.Has(KeyExternalLinks) {
		return NewServiceError(name, ErrUnresolvableDependency, "external_links are not supported")
	}
	for _, dep := range svc.Dependencies() {
		if !p.Has(dep) {
			return NewServiceError(name, ErrUnresolvableDependency, "%q is not a service of this project", dep)
		}
	}

	if svc.Has(KeyImage) && svc.Has(KeyBuild) {
		return NewServiceError(name, ErrConflictingImageSource, "cannot specify both 'image' and 'build'")
	}

	return nil
}

// ValidateResolved checks the project after overrides are applied: every
// service names exactly one image source and depends only on services of
// the project.
func ValidateResolved(p *Project) error {
	for _, name := range p.names {
		if err := ValidateResolvedService(p, name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateResolvedService runs the ValidateResolved checks for one service.
func ValidateResolvedService(p *Project, name string) error {
	svc, ok := p.services[name]
	if !ok {
		return NewServiceError(name, ErrUnresolvableDependency, "not a service of this project")
	}

	hasImage, hasBuild := svc.Has(KeyImage), svc.Has(KeyBuild)
	switch {
	case hasImage && hasBuild:
		return NewServiceError(name, ErrConflictingImageSource, "cannot specify both 'image' and 'build'")
	case !hasImage && !hasBuild:
		return NewServiceError(name, ErrConflictingImageSource, "one of 'image' or 'build' is required")
	}

	if svc.Has(KeyExternalLinks) {
		return NewServiceError(name, ErrUnresolvableDependency, "external_links are not supported")
	}
	for _, dep := range svc.Dependencies() {
		if !p.Has(dep) {
			return NewServiceError(name, ErrUnresolvableDependency, "%q is not a service of this project", dep)
		}
	}
	return nil
}

// HasHostBinding reports whether a ports entry publishes on a host port or
// host ip ("8080:80", "127.0.0.1::80", ":80"). Any host:container pair counts,
// including one whose host part is empty.
func HasHostBinding(entry string) bool {
	if strings.Contains(entry, ":") {
		return true
	}
	mappings, err := nat.ParsePortSpec(entry)
	if err != nil {
		return false
	}
	for _, m := range mappings {
		if m.Binding.HostPort != "" || m.Binding.HostIP != "" {
			return true
		}
	}
	return false
}

package compose

import "strings"

// netContainerPrefix marks a net value that joins another container's
// network namespace.
const netContainerPrefix = "container:"

// Dependencies returns the names of the services s must start after, in order
// of first appearance: volumes_from entries, link targets, then the container
// named by a "container:<name>" net value. Duplicates are dropped.
func (s *ServiceConfig) Dependencies() []string {
	var deps []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		deps = append(deps, name)
	}

	for _, entry := range s.Items(KeyVolumesFrom) {
		add(SplitReference(entry))
	}
	for _, entry := range s.Items(KeyLinks) {
		add(SplitReference(entry))
	}
	if net, ok := s.Get(KeyNet); ok {
		if name, ok := NetContainer(net.Text()); ok {
			add(name)
		}
	}

	return deps
}

// SplitReference returns the service part of a "service[:suffix]" reference
// as used by links (service:alias) and volumes_from (service:mode).
func SplitReference(ref string) string {
	name, _, _ := strings.Cut(ref, ":")
	return name
}

// NetContainer returns the container name of a "container:<name>" net value.
func NetContainer(net string) (string, bool) {
	return strings.CutPrefix(net, netContainerPrefix)
}

package compose

import "strings"

// VolumeEscape replaces path separators when a container path is flattened
// into a directory name under the mount root.
const VolumeEscape = "$"

// EscapeVolumePath flattens a container path into a single directory name:
// "/var/lib/data" becomes "$var$lib$data".
func EscapeVolumePath(path string) string {
	return strings.ReplaceAll(path, "/", VolumeEscape)
}

// MountVolumes binds every bare volumes entry (a container path without a
// colon) to a directory under root and returns the result as a new Project:
// "/data" becomes "<root>/$data:/data". Entries that already contain a colon
// are left as they are.
//
// Call it once, after ApplyOverride. A second pass changes nothing because
// rewritten entries contain a colon.
func MountVolumes(p *Project, root string) *Project {
	result := p.Clone()
	root = strings.TrimRight(root, "/")

	for _, name := range result.names {
		svc := result.services[name]
		value, ok := svc.values[KeyVolumes]
		if !ok {
			continue
		}

		items := value.Items()
		for i, vol := range items {
			if strings.Contains(vol, ":") {
				continue
			}
			items[i] = root + "/" + EscapeVolumePath(vol) + ":" + vol
		}

		if value.IsSequence() {
			svc.Set(KeyVolumes, Sequence(items...))
		} else {
			svc.Set(KeyVolumes, Scalar(items[0]))
		}
	}

	return result
}

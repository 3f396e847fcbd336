package compose

// ApplyOverride layers override onto base and returns the result as a new
// Project. Neither input is modified.
//
// For every key of an overridden service, a sequence overriding a sequence
// is appended to it (duplicates kept, order preserved); any other value
// replaces the existing one. Services that only exist in the override are
// added after the base services, in override order.
//
// ApplyOverride is not idempotent: applying the same override twice appends
// its sequences twice. The result is not re-validated.
func ApplyOverride(base, override *Project) *Project {
	result := base.Clone()
	if override == nil {
		return result
	}

	for _, name := range override.names {
		overlay := override.services[name]

		svc, ok := result.services[name]
		if !ok {
			svc = NewServiceConfig()
			result.Set(name, svc)
		}

		for _, key := range overlay.keys {
			value := overlay.values[key]
			existing, exists := svc.values[key]
			if exists && existing.IsSequence() && value.IsSequence() {
				svc.Set(key, existing.Concat(value))
				continue
			}
			svc.Set(key, value)
		}
	}

	return result
}

package compose

// Keys with special meaning to the pipeline.
const (
	KeyImage         = "image"
	KeyBuild         = "build"
	KeyPorts         = "ports"
	KeyVolumes       = "volumes"
	KeyVolumesFrom   = "volumes_from"
	KeyLinks         = "links"
	KeyExternalLinks = "external_links"
	KeyNet           = "net"
)

// ServiceConfig holds one service's configuration keys in document order.
type ServiceConfig struct {
	keys   []string
	values map[string]Value
}

// NewServiceConfig returns an empty ServiceConfig.
func NewServiceConfig() *ServiceConfig {
	return &ServiceConfig{values: make(map[string]Value)}
}

// Get returns the value stored under key.
func (s *ServiceConfig) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is set.
func (s *ServiceConfig) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Items returns the entries under key, or nil when key is not set.
func (s *ServiceConfig) Items(key string) []string {
	v, ok := s.values[key]
	if !ok {
		return nil
	}
	return v.Items()
}

// Set stores value under key. New keys are appended to the key order;
// existing keys keep their position.
func (s *ServiceConfig) Set(key string, value Value) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Keys returns the configuration keys in document order.
func (s *ServiceConfig) Keys() []string {
	return append([]string{}, s.keys...)
}

// Len returns the number of keys.
func (s *ServiceConfig) Len() int {
	return len(s.keys)
}

// Clone returns a deep copy of s.
func (s *ServiceConfig) Clone() *ServiceConfig {
	c := &ServiceConfig{
		keys:   append([]string{}, s.keys...),
		values: make(map[string]Value, len(s.values)),
	}
	for k, v := range s.values {
		if v.kind == KindSequence {
			v.items = append([]string{}, v.items...)
		}
		c.values[k] = v
	}
	return c
}

// Project is an ordered set of named services.
type Project struct {
	names    []string
	services map[string]*ServiceConfig
}

// NewProject returns an empty Project.
func NewProject() *Project {
	return &Project{services: make(map[string]*ServiceConfig)}
}

// Service returns the configuration of the named service.
func (p *Project) Service(name string) (*ServiceConfig, bool) {
	s, ok := p.services[name]
	return s, ok
}

// Has reports whether the project defines the named service.
func (p *Project) Has(name string) bool {
	_, ok := p.services[name]
	return ok
}

// Set stores cfg under name, appending name to the service order if new.
func (p *Project) Set(name string, cfg *ServiceConfig) {
	if _, ok := p.services[name]; !ok {
		p.names = append(p.names, name)
	}
	p.services[name] = cfg
}

// Names returns the service names in document order.
func (p *Project) Names() []string {
	return append([]string{}, p.names...)
}

// Len returns the number of services.
func (p *Project) Len() int {
	return len(p.names)
}

// Clone returns a deep copy of p.
func (p *Project) Clone() *Project {
	c := &Project{
		names:    append([]string{}, p.names...),
		services: make(map[string]*ServiceConfig, len(p.services)),
	}
	for name, svc := range p.services {
		c.services[name] = svc.Clone()
	}
	return c
}

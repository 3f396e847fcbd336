package unit

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cameronsjo/mooring/internal/compose"
)

// Generator defaults.
const (
	DefaultEngine     = "/usr/bin/docker"
	DefaultRestartSec = "10s"
)

// GeneratedUnit is a rendered unit file.
type GeneratedUnit struct {
	// Name is the unit file name, e.g. myapp-web.docker-compose.service.
	Name string

	// Content is the unit file text.
	Content string
}

// Result holds the output of one generation run.
type Result struct {
	// Units are the service units in project order.
	Units []GeneratedUnit

	// Target groups every unit in Units.
	Target GeneratedUnit

	// Warnings lists skipped configuration keys.
	Warnings []Warning
}

// Files returns the service units followed by the target.
func (r *Result) Files() []GeneratedUnit {
	files := make([]GeneratedUnit, 0, len(r.Units)+1)
	files = append(files, r.Units...)
	return append(files, r.Target)
}

// Options configures a Generator.
type Options struct {
	Naming Naming

	// Engine is the container engine binary. Defaults to DefaultEngine.
	Engine string

	// RestartSec is the restart backoff. Defaults to DefaultRestartSec.
	RestartSec string

	// Renderer renders unit text. Defaults to the built-in templates.
	Renderer *Renderer

	// Logger receives progress and warnings. Defaults to a discarding logger.
	Logger *slog.Logger

	// Workers bounds concurrent service rendering. Defaults to GOMAXPROCS.
	Workers int
}

// Generator renders units for a project.
type Generator struct {
	naming     Naming
	engine     string
	restartSec string
	renderer   *Renderer
	mapper     *OptionMapper
	logger     *slog.Logger
	workers    int
}

// NewGenerator returns a Generator for opts.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Naming.Project == "" {
		return nil, fmt.Errorf("project name is required")
	}

	g := &Generator{
		naming:     opts.Naming,
		engine:     opts.Engine,
		restartSec: opts.RestartSec,
		renderer:   opts.Renderer,
		logger:     opts.Logger,
		workers:    opts.Workers,
	}

	if g.naming.UnitSuffix == "" {
		g.naming.UnitSuffix = DefaultUnitSuffix
	}
	if g.naming.TargetSuffix == "" {
		g.naming.TargetSuffix = DefaultTargetSuffix
	}
	if g.naming.EngineUnit == "" {
		g.naming.EngineUnit = DefaultEngineUnit
	}
	if g.engine == "" {
		g.engine = DefaultEngine
	}
	if g.restartSec == "" {
		g.restartSec = DefaultRestartSec
	}
	if g.renderer == nil {
		r, err := NewRenderer()
		if err != nil {
			return nil, err
		}
		g.renderer = r
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if g.workers <= 0 {
		g.workers = runtime.GOMAXPROCS(0)
	}
	g.mapper = NewOptionMapper(g.naming)

	return g, nil
}

// Naming returns the naming scheme the generator uses.
func (g *Generator) Naming() Naming {
	return g.naming
}

// Translate runs the full pipeline on a descriptor: validate it, apply the
// override, bind bare volumes under mountRoot and generate the units.
// override may be nil.
func (g *Generator) Translate(descriptor, override *compose.Project, mountRoot string) (*Result, error) {
	if err := compose.Validate(descriptor); err != nil {
		return nil, err
	}

	merged := compose.ApplyOverride(descriptor, override)
	mounted := compose.MountVolumes(merged, mountRoot)

	return g.Generate(mounted)
}

// state is the progress of one service through generation.
type state int

const (
	stateInit state = iota
	stateValidated
	stateMapped
	stateRendered
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateValidated:
		return "validated"
	case stateMapped:
		return "mapped"
	case stateRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

// job carries one service through the states.
type job struct {
	name    string
	svc     *compose.ServiceConfig
	state   state
	deps    []string
	mapping *Mapping
	unit    GeneratedUnit
	err     error
}

// Generate renders one unit per service of p and the aggregate target. p is
// expected to have been through ApplyOverride and MountVolumes already.
//
// Services are rendered concurrently. If any service fails, the first
// failure in project order is returned and no units are produced.
func (g *Generator) Generate(p *compose.Project) (*Result, error) {
	names := p.Names()
	jobs := make([]*job, len(names))
	for i, name := range names {
		svc, _ := p.Service(name)
		jobs[i] = &job{name: name, svc: svc}
	}

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for _, j := range jobs {
		eg.Go(func() error {
			j.err = g.run(p, j)
			return nil
		})
	}
	_ = eg.Wait()

	result := &Result{Units: make([]GeneratedUnit, 0, len(jobs))}
	for _, j := range jobs {
		if j.err != nil {
			g.logger.Error("generation aborted", "service", j.name, "state", j.state.String(), "error", j.err)
			return nil, j.err
		}
		result.Units = append(result.Units, j.unit)
		result.Warnings = append(result.Warnings, j.mapping.Warnings...)
	}

	target, err := g.aggregate(result.Units)
	if err != nil {
		return nil, err
	}
	result.Target = target

	g.logger.Info("units generated", "project", g.naming.Project, "units", len(result.Units), "target", target.Name)
	return result, nil
}

// run advances j until it is rendered or fails.
func (g *Generator) run(p *compose.Project, j *job) error {
	for j.state != stateRendered {
		var err error
		switch j.state {
		case stateInit:
			err = g.validate(p, j)
		case stateValidated:
			err = g.mapOptions(j)
		case stateMapped:
			err = g.render(j)
		}
		if err != nil {
			return err
		}
		j.state++
		g.logger.Debug("service advanced", "service", j.name, "state", j.state.String())
	}
	return nil
}

// validate checks what merging overrides may have broken: the image source
// and the dependency targets.
func (g *Generator) validate(p *compose.Project, j *job) error {
	if err := compose.ValidateResolvedService(p, j.name); err != nil {
		return err
	}
	j.deps = g.naming.Dependencies(j.svc)
	return nil
}

func (g *Generator) mapOptions(j *job) error {
	mapping, err := g.mapper.Map(j.name, j.svc)
	if err != nil {
		return err
	}
	for _, w := range mapping.Warnings {
		g.logger.Warn("unsupported option ignored", "service", w.Service, "key", w.Key)
	}
	j.mapping = mapping
	return nil
}

func (g *Generator) render(j *job) error {
	name := g.naming.UnitName(j.name)
	content, err := g.renderer.RenderService(ServiceData{
		Project:      g.naming.Project,
		Service:      j.name,
		Unit:         name,
		Container:    g.naming.ContainerName(j.name),
		Image:        j.mapping.Image,
		Engine:       g.engine,
		RestartSec:   g.restartSec,
		Target:       g.naming.TargetName(),
		Dependencies: j.deps,
		Args:         j.mapping.Args,
		Command:      j.mapping.Command,
	})
	if err != nil {
		return &compose.ServiceError{Service: j.name, Err: err}
	}

	j.unit = GeneratedUnit{Name: name, Content: content}
	return nil
}

// aggregate renders the target grouping every generated unit.
func (g *Generator) aggregate(units []GeneratedUnit) (GeneratedUnit, error) {
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}

	target := g.naming.TargetName()
	content, err := g.renderer.RenderTarget(TargetData{
		Project: g.naming.Project,
		Target:  target,
		Units:   names,
	})
	if err != nil {
		return GeneratedUnit{}, err
	}

	return GeneratedUnit{Name: target, Content: content}, nil
}

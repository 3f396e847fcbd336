package unit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/cameronsjo/mooring/internal/compose"
)

var (
	// ErrUnsupportedOption marks a configuration key outside the allow-list.
	// It is never fatal: the key is skipped and reported as a Warning.
	ErrUnsupportedOption = errors.New("unsupported option")

	// ErrInvalidCommand indicates a command value that cannot be split into
	// arguments.
	ErrInvalidCommand = errors.New("invalid command")
)

// DockerConfigKeys are the configuration keys passed on to the container
// engine's run command.
var DockerConfigKeys = []string{
	"cap_add",
	"cap_drop",
	"cpu_shares",
	"cpuset",
	"command",
	"dns",
	"dns_search",
	"domainname",
	"entrypoint",
	"env_file",
	"environment",
	"extra_hosts",
	"hostname",
	"image",
	"label",
	"links",
	"mem_limit",
	"net",
	"log_driver",
	"pid",
	"ports",
	"privileged",
	"restart",
	"user",
	"volumes",
	"volumes_from",
	"working_dir",
}

// AllowedKeys is the full allow-list: the run options plus the keys that
// only select or build the image.
var AllowedKeys = append(append([]string{}, DockerConfigKeys...),
	"build",
	"dockerfile",
	"expose",
)

// ruleKind says what a key contributes to the run command.
type ruleKind int

const (
	// ruleFlag emits one flag fragment per value entry.
	ruleFlag ruleKind = iota
	// ruleImage selects the image reference and emits nothing.
	ruleImage
	// ruleIgnore emits nothing; the key only matters to an image build.
	ruleIgnore
	// ruleCommand appends the value after the image.
	ruleCommand
)

// rewriteFunc turns one value entry into a flag and its value.
type rewriteFunc func(n Naming, entry string) (flag, value string)

type rule struct {
	kind    ruleKind
	rewrite rewriteFunc
}

// rules maps every allowed key to its rewrite rule. Every key becomes a run
// flag except two: command is passed as arguments after the image, and
// dockerfile only affects the image build so it emits nothing.
var rules = map[string]rule{
	"cap_add":      flag(dashed("cap_add")),
	"cap_drop":     flag(dashed("cap_drop")),
	"cpu_shares":   flag(dashed("cpu_shares")),
	"cpuset":       flag(dashed("cpuset")),
	"dns":          flag(dashed("dns")),
	"dns_search":   flag(dashed("dns_search")),
	"domainname":   flag(dashed("domainname")),
	"entrypoint":   flag(dashed("entrypoint")),
	"env_file":     flag(dashed("env_file")),
	"environment":  flag("--env"),
	"extra_hosts":  flag("--add-host"),
	"hostname":     flag(dashed("hostname")),
	"label":        flag(dashed("label")),
	"mem_limit":    flag(dashed("mem_limit")),
	"log_driver":   flag(dashed("log_driver")),
	"pid":          flag(dashed("pid")),
	"privileged":   flag(dashed("privileged")),
	"restart":      flag(dashed("restart")),
	"user":         flag(dashed("user")),
	"volumes":      flag("--volume"),
	"working_dir":  flag(dashed("working_dir")),
	"expose":       flag(dashed("expose")),
	"ports":        {kind: ruleFlag, rewrite: rewritePort},
	"links":        {kind: ruleFlag, rewrite: rewriteLink},
	"volumes_from": {kind: ruleFlag, rewrite: rewriteVolumesFrom},
	"net":          {kind: ruleFlag, rewrite: rewriteNet},
	"image":        {kind: ruleImage},
	"build":        {kind: ruleImage},
	"dockerfile":   {kind: ruleIgnore},
	"command":      {kind: ruleCommand},
}

// dashed derives a flag from a key: cap_add becomes --cap-add.
func dashed(key string) string {
	return "--" + strings.ReplaceAll(key, "_", "-")
}

func flag(name string) rule {
	return rule{
		kind: ruleFlag,
		rewrite: func(_ Naming, entry string) (string, string) {
			return name, entry
		},
	}
}

// rewritePort publishes entries with a host part and exposes the rest.
func rewritePort(_ Naming, entry string) (string, string) {
	if strings.Contains(entry, ":") {
		return "--publish", entry
	}
	return "--expose", entry
}

// rewriteLink points the link at the generated container name, keeping the alias.
func rewriteLink(n Naming, entry string) (string, string) {
	parts := strings.Split(entry, ":")
	parts[0] = n.ContainerName(parts[0])
	return "--link", strings.Join(parts, ":")
}

// rewriteVolumesFrom points at the generated container name, keeping the mode.
func rewriteVolumesFrom(n Naming, entry string) (string, string) {
	service, mode, hasMode := strings.Cut(entry, ":")
	value := n.ContainerName(service)
	if hasMode {
		value += ":" + mode
	}
	return "--volumes-from", value
}

// rewriteNet points a container:<service> network at the generated container.
func rewriteNet(n Naming, entry string) (string, string) {
	if service, ok := compose.NetContainer(entry); ok {
		return "--net", "container:" + n.ContainerName(service)
	}
	return "--net", entry
}

// Fragment is one command-line flag with its value.
type Fragment struct {
	Flag  string
	Value string
}

// String renders the fragment as it appears on an ExecStart line.
func (f Fragment) String() string {
	return f.Flag + " " + Quote(f.Value)
}

// Quote double-quotes value for a systemd command line. Backslashes and
// double quotes are escaped and % is doubled so it is not read as a specifier.
func Quote(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `%`, `%%`)
	return `"` + r.Replace(value) + `"`
}

// Warning reports a configuration key that was skipped.
type Warning struct {
	Service string
	Key     string
}

// Error implements the error interface.
func (w Warning) Error() string {
	return fmt.Sprintf("unsupported option '%s' in service '%s' definition, ignoring", w.Key, w.Service)
}

// Unwrap returns ErrUnsupportedOption.
func (w Warning) Unwrap() error {
	return ErrUnsupportedOption
}

// Mapping is the run command material of one service.
type Mapping struct {
	// Image is the image reference the container runs.
	Image string

	// Args are the flag fragments in configuration key order.
	Args []Fragment

	// Command holds the arguments passed after the image.
	Command []string

	// Warnings lists the keys that were skipped.
	Warnings []Warning
}

// OptionMapper converts service configuration into run command fragments.
type OptionMapper struct {
	naming Naming
}

// NewOptionMapper returns an OptionMapper naming containers with n.
func NewOptionMapper(n Naming) *OptionMapper {
	return &OptionMapper{naming: n}
}

// Map converts every configuration key of svc. Keys outside the allow-list
// are skipped and returned as warnings; mapping carries on with the next key.
func (m *OptionMapper) Map(service string, svc *compose.ServiceConfig) (*Mapping, error) {
	mapping := &Mapping{}

	for _, key := range svc.Keys() {
		value, _ := svc.Get(key)

		r, ok := rules[key]
		if !ok {
			mapping.Warnings = append(mapping.Warnings, Warning{Service: service, Key: key})
			continue
		}

		switch r.kind {
		case ruleImage:
			if key == compose.KeyImage {
				mapping.Image = value.Text()
			} else {
				mapping.Image = m.naming.ImageName(service)
			}

		case ruleIgnore:
			// build-only key, nothing to run

		case ruleCommand:
			args, err := splitCommand(value)
			if err != nil {
				return nil, compose.NewServiceError(service, ErrInvalidCommand, "%v", err)
			}
			mapping.Command = args

		case ruleFlag:
			for _, entry := range value.Items() {
				flagName, flagValue := r.rewrite(m.naming, entry)
				mapping.Args = append(mapping.Args, Fragment{Flag: flagName, Value: flagValue})
			}
		}
	}

	return mapping, nil
}

// splitCommand returns the command arguments: sequences verbatim, scalars
// split with shell word rules.
func splitCommand(value compose.Value) ([]string, error) {
	if value.IsSequence() {
		return value.Items(), nil
	}
	return shellwords.Parse(value.Text())
}

package compose

import (
	"fmt"
	"regexp"
	"strings"
)

// varPattern matches ${name} and ${name:-default} placeholders.
var varPattern = regexp.MustCompile(`\$\{(\w+)(:-([^}]*))?\}`)

// Interpolate replaces ${name} placeholders in template with values from
// variables. A ${name:-default} placeholder falls back to default when name
// is unset or empty. Any other unset name is an error.
//
//	Interpolate("/srv/${project}", map[string]string{"project": "myapp"}) // "/srv/myapp"
func Interpolate(template string, variables map[string]string) (string, error) {
	var missing []string

	result := varPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := groups[1], groups[2] != "", groups[3]

		if value, ok := variables[name]; ok && (value != "" || !hasDefault) {
			return value
		}
		if hasDefault {
			return fallback
		}

		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("missing variables: ${%s}", strings.Join(missing, "}, ${"))
	}

	return result, nil
}

package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]string{"project": "myapp", "empty": ""}

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  string
	}{
		{name: "plain", template: "/srv/data", want: "/srv/data"},
		{name: "variable", template: "/srv/${project}", want: "/srv/myapp"},
		{name: "repeated", template: "${project}/${project}", want: "myapp/myapp"},
		{name: "default unused", template: "${project:-other}", want: "myapp"},
		{name: "default for unset", template: "${host:-localhost}", want: "localhost"},
		{name: "default for empty", template: "${empty:-x}", want: "x"},
		{name: "empty without default", template: "[${empty}]", want: "[]"},
		{name: "missing", template: "${a}/${b}", wantErr: "missing variables: ${a}, ${b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(tt.template, vars)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

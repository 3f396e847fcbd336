package unit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderService(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	got, err := r.RenderService(ServiceData{
		Project:      "myapp",
		Service:      "web",
		Unit:         "myapp-web.docker-compose.service",
		Container:    "myapp-web-1",
		Image:        "app",
		Engine:       "/usr/bin/docker",
		RestartSec:   "10s",
		Target:       "myapp.docker-compose.target",
		Dependencies: []string{"myapp-db.docker-compose.service"},
		Args:         []Fragment{{Flag: "--env", Value: "GREETING=50% off"}},
		Command:      []string{"serve", "--port", "80"},
	})
	require.NoError(t, err)

	want := `[Unit]
Description=Run myapp-web-1
After=myapp-db.docker-compose.service
Requires=myapp-db.docker-compose.service
PartOf=myapp.docker-compose.target

[Service]
Restart=always
RestartSec=10s
ExecStartPre=-/usr/bin/docker kill myapp-web-1
ExecStartPre=-/usr/bin/docker rm myapp-web-1
ExecStart=/usr/bin/docker run --rm --name "myapp-web-1" \
        --label "com.docker.compose.project=myapp" --label "com.docker.compose.service=web" \
        --label "com.docker.compose.container-number=1" \
        --env "GREETING=50%% off" \
        "app" "serve" "--port" "80"
ExecStop=/usr/bin/docker stop myapp-web-1
ExecStopPost=-/usr/bin/docker rm myapp-web-1

[Install]
WantedBy=multi-user.target
`
	assert.Equal(t, want, got)
}

func TestRenderServiceQuotesImage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	svc, err := r.RenderService(ServiceData{Project: "myapp", Service: "web", Container: "myapp-web-1", Image: "registry/app:%i", Engine: "docker"})
	require.NoError(t, err)
	assert.Contains(t, svc, "        \"registry/app:%%i\"\n")
	assert.NotContains(t, svc, " registry/app:%i")
}

func TestRenderTarget(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	tests := []struct {
		name  string
		units []string
		want  string
	}{
		{
			name:  "with units",
			units: []string{"a.service", "b.service"},
			want: `[Unit]
Description=myapp application
Requires=a.service b.service
Wants=a.service b.service
After=a.service b.service

[Install]
WantedBy=multi-user.target
`,
		},
		{
			name: "empty project",
			want: `[Unit]
Description=myapp application

[Install]
WantedBy=multi-user.target
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderTarget(TargetData{Project: "myapp", Target: "myapp.docker-compose.target", Units: tt.units})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRendererFromDir(t *testing.T) {
	dir := t.TempDir()
	custom := "# {{ .Project }}: {{ len .Units }} units\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, TargetTemplate), []byte(custom), 0644))

	r, err := NewRendererFromDir(dir)
	require.NoError(t, err)

	target, err := r.RenderTarget(TargetData{Project: "myapp", Units: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "# myapp: 2 units\n", target)

	// service.tmpl falls back to the built-in template
	svc, err := r.RenderService(ServiceData{Project: "myapp", Service: "web", Container: "myapp-web-1", Image: "app", Engine: "docker"})
	require.NoError(t, err)
	assert.Contains(t, svc, "ExecStart=docker run --rm --name \"myapp-web-1\"")
}

func TestNewRendererFromDirErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewRendererFromDir(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		_, err := NewRendererFromDir(file)
		assert.Error(t, err)
	})

	t.Run("bad template", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ServiceTemplate), []byte("{{ .Broken "), 0644))
		_, err := NewRendererFromDir(dir)
		assert.ErrorContains(t, err, "parse template service.tmpl")
	})

	t.Run("empty dir uses built-in", func(t *testing.T) {
		r, err := NewRendererFromDir("")
		require.NoError(t, err)
		assert.NotNil(t, r)
	})
}

func TestRendererSprigFunctions(t *testing.T) {
	dir := t.TempDir()
	tmpl := "{{ .Project | upper }} {{ .Units | join \",\" }}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, TargetTemplate), []byte(tmpl), 0644))

	r, err := NewRendererFromDir(dir)
	require.NoError(t, err)

	got, err := r.RenderTarget(TargetData{Project: "myapp", Units: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "MYAPP a,b\n", got)
}

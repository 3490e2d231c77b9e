package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/ytinu/internal/model"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.0.0", "abc123", "2025-11-05", "goreleaser")

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Print version information", cmd.Short)
	assert.Contains(t, cmd.Long, "state schema")
	assert.NotEmpty(t, cmd.Example)
}

func TestPrintVersion(t *testing.T) {
	tests := []struct {
		name     string
		jsonMode bool
		version  string
		want     []string
	}{
		{
			name:    "release build",
			version: "1.0.0",
			want: []string{
				"ytinu version 1.0.0",
				"Commit: abc123",
				"Built: 2025-11-05",
				"Built by: goreleaser",
				"State schema: " + model.CurrentSchemaVersion,
			},
		},
		{
			name:    "dev build",
			version: "dev",
			want:    []string{"ytinu version dev"},
		},
		{
			name:     "json envelope",
			jsonMode: true,
			version:  "1.0.0",
			want: []string{
				`"status": "success"`,
				`"version": "1.0.0"`,
				`"built_by": "goreleaser"`,
				`"schema_version": "` + model.CurrentSchemaVersion + `"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonOut = tt.jsonMode
			defer func() { jsonOut = false }()

			var buf bytes.Buffer
			require.NoError(t, printVersion(&buf, tt.version, "abc123", "2025-11-05", "goreleaser"))

			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrintVersionText_LineOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printVersionText(&buf, VersionInfo{Version: "0.3.1", SchemaVersion: "2.0.0"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "ytinu version 0.3.1", lines[0])
	assert.Equal(t, "State schema: 2.0.0", lines[4])
}

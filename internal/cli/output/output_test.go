package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"games": 2}))

	var env struct {
		Status string         `json:"status"`
		Data   map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, 2, env.Data["games"])
}

func TestError(t *testing.T) {
	boom := errors.New("boom")

	var buf bytes.Buffer
	err := Error(&buf, true, boom)
	assert.Same(t, boom, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "boom", env.Error)

	buf.Reset()
	assert.Same(t, boom, Error(&buf, false, boom))
	assert.Empty(t, buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, table.Row{"ID", "NAME"}, []table.Row{
		{"valheim", "Valheim"},
		{"rounds", "ROUNDS"},
	})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "valheim")
	assert.Contains(t, out, "ROUNDS")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 3)
}

func TestPrintf(t *testing.T) {
	var buf bytes.Buffer
	Printf(&buf, true, "hidden\n")
	assert.Empty(t, buf.String())

	Printf(&buf, false, "shown %d\n", 1)
	assert.Equal(t, "shown 1\n", buf.String())
}

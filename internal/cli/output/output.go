// Package output renders command results as tables or JSON envelopes.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
)

// Status values of the JSON envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the JSON document every command prints in --json mode.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes data in a success envelope.
func JSON(w io.Writer, data any) error {
	return encode(w, Envelope{Status: StatusSuccess, Data: data})
}

// Error reports err and returns it. In JSON mode an error envelope is
// written to w, otherwise nothing is printed and cobra reports the error.
func Error(w io.Writer, jsonMode bool, err error) error {
	if jsonMode {
		_ = encode(w, Envelope{Status: StatusError, Error: err.Error()})
	}
	return err
}

func encode(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

// Table writes rows under header as a borderless table.
func Table(w io.Writer, header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = true
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

// Printf writes a line unless quiet is set.
func Printf(w io.Writer, quiet bool, format string, args ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

// Bold renders s in bold.
func Bold(s string) string {
	return text.Bold.Sprint(s)
}

// Mark renders a boolean as a check mark.
func Mark(b bool) string {
	if b {
		return "✓"
	}
	return "-"
}

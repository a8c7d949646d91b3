package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/driftlabs/driftsync/internal/utils"
)

const (
	outputFormatJSON  = "json"
	outputFormatTable = "table"
)

// CLIOutput is the JSON envelope every command emits in json mode.
type CLIOutput struct {
	SchemaVersion string            `json:"schemaVersion"`
	Command       string            `json:"command"`
	Data          interface{}       `json:"data"`
	Errors        []*utils.CLIError `json:"errors"`
}

// TableRenderer is implemented by data that knows how to present itself
// as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// OutputWriter handles CLI output formatting
type OutputWriter struct {
	format string
	quiet  bool
	writer io.Writer
}

// NewOutputWriter creates a new output writer
func NewOutputWriter(format string, quiet bool) *OutputWriter {
	return &OutputWriter{format: format, quiet: quiet, writer: os.Stdout}
}

// WriteSuccess writes a successful result
func (w *OutputWriter) WriteSuccess(command string, data interface{}) error {
	if w.format == outputFormatJSON {
		return w.writeJSON(CLIOutput{
			SchemaVersion: utils.SchemaVersion,
			Command:       command,
			Data:          data,
			Errors:        []*utils.CLIError{},
		})
	}
	return w.writeTable(data)
}

// WriteError writes an error result. Table mode leaves error reporting to
// the root command's stderr path.
func (w *OutputWriter) WriteError(command string, cliErr *utils.CLIError) error {
	if w.format != outputFormatJSON {
		return nil
	}
	return w.writeJSON(CLIOutput{
		SchemaVersion: utils.SchemaVersion,
		Command:       command,
		Data:          nil,
		Errors:        []*utils.CLIError{cliErr},
	})
}

// WriteMessage writes a human-oriented note, suppressed in quiet and json
// modes.
func (w *OutputWriter) WriteMessage(format string, args ...interface{}) {
	if w.quiet || w.format == outputFormatJSON {
		return
	}
	fmt.Fprintf(w.writer, format+"\n", args...)
}

func (w *OutputWriter) writeJSON(output CLIOutput) error {
	encoder := json.NewEncoder(w.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (w *OutputWriter) writeTable(data interface{}) error {
	renderer, ok := data.(TableRenderer)
	if !ok {
		return fmt.Errorf("no table rendering for %T", data)
	}
	table := tablewriter.NewWriter(w.writer)
	table.SetHeader(renderer.Headers())
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range renderer.Rows() {
		table.Append(row)
	}
	table.Render()
	return nil
}

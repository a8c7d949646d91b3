package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/driftlabs/driftsync/internal/store"
	testhelpers "github.com/driftlabs/driftsync/internal/testing"
)

func TestConfigListRows(t *testing.T) {
	disabled := testhelpers.TestConfig("b")
	disabled.Enabled = false
	disabled.LastError = store.FingerprintMismatch

	list := configList{testhelpers.TestConfig("a"), disabled}
	rows := list.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(list.Headers()) {
		t.Fatalf("row width %d does not match %d headers", len(rows[0]), len(list.Headers()))
	}
	testhelpers.AssertEqual(t, rows[0][0], "a", "id cell")
	testhelpers.AssertEqual(t, rows[0][4], "two-way", "direction cell")
	testhelpers.AssertEqual(t, rows[0][5], "yes", "enabled cell")
	testhelpers.AssertEqual(t, rows[0][6], "", "last error cell")
	testhelpers.AssertEqual(t, rows[1][5], "no", "disabled cell")
	if rows[1][6] == "" {
		t.Error("expected last error cell for disabled config")
	}
}

func TestOutputWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	w := &OutputWriter{format: outputFormatJSON, writer: &buf}

	err := w.WriteSuccess("list", configList{testhelpers.TestConfig("a")})
	testhelpers.AssertNoError(t, err, "writing json output")

	var output struct {
		SchemaVersion string `json:"schemaVersion"`
		Command       string `json:"command"`
		Data          []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	testhelpers.AssertEqual(t, output.Command, "list", "command field")
	if len(output.Data) != 1 || output.Data[0].ID != "a" {
		t.Errorf("unexpected data payload: %s", buf.String())
	}
}

func TestOutputWriterTable(t *testing.T) {
	var buf bytes.Buffer
	w := &OutputWriter{format: outputFormatTable, writer: &buf}

	err := w.WriteSuccess("list", configList{testhelpers.TestConfig("a")})
	testhelpers.AssertNoError(t, err, "writing table output")

	got := buf.String()
	for _, want := range []string{"ID", "a", "/home/u/docs", "two-way"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
}

func TestOutputWriterMessageSuppression(t *testing.T) {
	tests := []struct {
		name   string
		format string
		quiet  bool
		want   string
	}{
		{"table chatty", outputFormatTable, false, "hi\n"},
		{"table quiet", outputFormatTable, true, ""},
		{"json never chats", outputFormatJSON, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := &OutputWriter{format: tt.format, quiet: tt.quiet, writer: &buf}
			w.WriteMessage("hi")
			if buf.String() != tt.want {
				t.Errorf("message output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

package cli

import (
	"reflect"
	"testing"

	"github.com/driftlabs/driftsync/internal/store"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    store.Direction
		wantErr bool
	}{
		{"two-way", "two-way", store.TwoWay, false},
		{"two-way alias", "bidirectional", store.TwoWay, false},
		{"upload", "up", store.Up, false},
		{"upload alias", "upload", store.Up, false},
		{"download", "down", store.Down, false},
		{"case insensitive", "Two-Way", store.TwoWay, false},
		{"unknown", "sideways", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDirection(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDirection(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDirection(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitPatterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "*.tmp", []string{"*.tmp"}},
		{"multiple", "*.tmp,.git/,Thumbs.db", []string{"*.tmp", ".git/", "Thumbs.db"}},
		{"whitespace trimmed", " *.tmp , .git/ ", []string{"*.tmp", ".git/"}},
		{"blank segments dropped", "*.tmp,,  ,*.bak", []string{"*.tmp", "*.bak"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPatterns(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitPatterns(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

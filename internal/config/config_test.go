package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockHomedir(t *testing.T) {
	t.Helper()
	oldExpand := homedirExpand
	homedirExpand = func(path string) (string, error) {
		if len(path) > 0 && path[0] == '~' {
			return "/home/u" + path[1:], nil
		}
		return path, nil
	}
	t.Cleanup(func() { homedirExpand = oldExpand })
}

func mockFs(t *testing.T) afero.Fs {
	t.Helper()
	oldFs := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = oldFs })
	return fs
}

func TestParseMissingFile(t *testing.T) {
	mockHomedir(t)
	mockFs(t)

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.driftsync", cfg.StateDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultDebrisName, cfg.DebrisName)
	assert.Equal(t, "/home/u/.driftsync/tracked.db", cfg.CachePath())
}

func TestParseOverrides(t *testing.T) {
	mockHomedir(t)
	mfs := mockFs(t)

	contents := `stateDir: /var/lib/driftsync
logLevel: debug
debrisName: .trash
`
	require.NoError(t, afero.WriteFile(mfs, "/home/u/.driftsync.yaml", []byte(contents), 0644))

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/driftsync", cfg.StateDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ".trash", cfg.DebrisName)
}

func TestParsePartialOverrides(t *testing.T) {
	mockHomedir(t)
	mfs := mockFs(t)

	require.NoError(t, afero.WriteFile(mfs, "/home/u/.driftsync.yaml", []byte("logLevel: warn\n"), 0644))

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/home/u/.driftsync", cfg.StateDir)
	assert.Equal(t, DefaultDebrisName, cfg.DebrisName)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	mockHomedir(t)

	tests := []struct {
		name     string
		contents string
	}{
		{"typoed key", "logLevle: warn\n"},
		{"unknown key among valid ones", "logLevel: warn\nextras: true\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mfs := mockFs(t)
			require.NoError(t, afero.WriteFile(mfs, "/home/u/.driftsync.yaml", []byte(test.contents), 0644))

			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	mockHomedir(t)

	tests := []struct {
		name     string
		contents string
	}{
		{"bad log level", "logLevel: noisy\n"},
		{"debris with separator", "debrisName: a/b\n"},
		{"malformed yaml", "stateDir: [unclosed\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mfs := mockFs(t)
			require.NoError(t, afero.WriteFile(mfs, "/home/u/.driftsync.yaml", []byte(test.contents), 0644))

			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

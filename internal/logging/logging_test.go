package logging

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	level := log.GetLevel()
	out := log.StandardLogger().Out
	t.Cleanup(func() {
		log.SetLevel(level)
		log.SetOutput(out)
	})
}

func TestSetupAppliesLevel(t *testing.T) {
	restoreLogger(t)

	require.NoError(t, Setup("debug", ""))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, Setup("warn", ""))
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	restoreLogger(t)

	err := Setup("chatty", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestSetupWritesToFile(t *testing.T) {
	restoreLogger(t)
	orig := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = orig })

	require.NoError(t, Setup("info", "logs/driftsync.log"))
	log.Info("hello from the run")

	data, err := afero.ReadFile(fs, "logs/driftsync.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the run")
}

func TestSetupAppendsToExistingFile(t *testing.T) {
	restoreLogger(t)
	orig := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = orig })

	require.NoError(t, afero.WriteFile(fs, "run.log", []byte("previous run\n"), 0o600))
	require.NoError(t, Setup("info", "run.log"))
	log.Info("second run")

	data, err := afero.ReadFile(fs, "run.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "previous run")
	assert.Contains(t, string(data), "second run")
}

func TestSetupFileOpenFailure(t *testing.T) {
	restoreLogger(t)
	orig := fs
	fs = afero.NewReadOnlyFs(afero.NewMemMapFs())
	t.Cleanup(func() { fs = orig })

	var buf bytes.Buffer
	log.SetOutput(&buf)

	err := Setup("info", "logs/driftsync.log")
	require.Error(t, err)
	assert.Same(t, &buf, log.StandardLogger().Out, "failed setup must not rebind output")
}

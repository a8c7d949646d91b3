// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

// Setup parses level, applies it to the global logger and installs a
// full-timestamp text formatter. When file is non-empty, log output is
// appended there instead of stderr; missing parent directories are created.
func Setup(level, file string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	log.SetLevel(parsed)

	formatter := &log.TextFormatter{FullTimestamp: true}
	var out io.Writer = os.Stderr
	if file != "" {
		if err := fs.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := fs.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		formatter.DisableColors = true
		out = f
	}
	log.SetFormatter(formatter)
	log.SetOutput(out)
	return nil
}

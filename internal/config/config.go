// Package config loads the driftsync user configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// ConfigPath is the default path to the driftsync user config.
	ConfigPath = "~/.driftsync.yaml"

	// DefaultStateDir holds the encrypted config slots, the statecache
	// and the key file fallback.
	DefaultStateDir = "~/.driftsync"

	// DefaultDebrisName is the folder under each sync root where replaced
	// files are parked instead of deleted. It is never synced.
	DefaultDebrisName = ".debris"

	DefaultLogLevel = "info"
)

// Config is the user-level configuration shared by every command. Every
// field has a default; the config file is optional.
type Config struct {
	StateDir   string `json:"stateDir,omitempty"`
	LogLevel   string `json:"logLevel,omitempty"`
	DebrisName string `json:"debrisName,omitempty"`
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// Default returns the built-in configuration with paths unexpanded.
func Default() Config {
	return Config{
		StateDir:   DefaultStateDir,
		LogLevel:   DefaultLogLevel,
		DebrisName: DefaultDebrisName,
	}
}

// Parse loads the config from the default path. A missing file yields
// the defaults; present fields override them. Paths come back expanded.
func Parse() (Config, error) {
	path, err := homedirExpand(ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}

	config := Default()
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return normalize(config)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return Config{}, fmt.Errorf("parse %q: %v", path, err)
	}
	// Strict pass catches typos and extra fields the lenient pass ignores.
	if err := strictUnmarshal(configBytes, &config); err != nil {
		return Config{}, fmt.Errorf("parse %q: %v", path, err)
	}

	return normalize(config)
}

// strictUnmarshal rejects fields Config does not declare. ghodss/yaml has
// no strict mode, so the document goes through its YAML-to-JSON conversion
// and is decoded with unknown fields disallowed.
func strictUnmarshal(data []byte, config *Config) error {
	jsonBytes, err := yaml.YAMLToJSON(data)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(jsonBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(config)
}

// CachePath returns the path of the tracked-node statecache.
func (c Config) CachePath() string {
	return filepath.Join(c.StateDir, "tracked.db")
}

func normalize(c Config) (Config, error) {
	if c.StateDir == "" {
		c.StateDir = DefaultStateDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DebrisName == "" {
		c.DebrisName = DefaultDebrisName
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if strings.ContainsRune(c.DebrisName, '/') {
		return Config{}, fmt.Errorf("debris name %q must not contain '/'", c.DebrisName)
	}

	expanded, err := homedirExpand(c.StateDir)
	if err != nil {
		return Config{}, fmt.Errorf("expand state dir: %w", err)
	}
	c.StateDir = expanded

	return c, nil
}

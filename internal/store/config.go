package store

import (
	"errors"
	"fmt"
	"slices"
)

// Direction selects which way changes flow for a sync config.
type Direction int

const (
	Up Direction = 1 << iota
	Down
)

const TwoWay = Up | Down

func (d Direction) IsUp() bool   { return d&Up != 0 }
func (d Direction) IsDown() bool { return d&Down != 0 }

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case TwoWay:
		return "two-way"
	default:
		return "unknown"
	}
}

// ErrorCode records why a sync config was disabled.
type ErrorCode int

const (
	NoError ErrorCode = iota
	FingerprintMismatch
	UnknownError
)

func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "no error"
	case FingerprintMismatch:
		return "local filesystem changed identity"
	default:
		return "unknown error"
	}
}

// Config describes one tracked pairing of a local root and a remote root.
// RemoteID is empty until the remote root has been resolved.
type Config struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	LocalPath        string    `json:"localPath"`
	RemoteID         string    `json:"remoteId,omitempty"`
	RemotePath       string    `json:"remotePath"`
	Enabled          bool      `json:"enabled"`
	Direction        Direction `json:"direction"`
	SyncDeletions    bool      `json:"syncDeletions"`
	ForceOverwrite   bool      `json:"forceOverwrite"`
	Excludes         []string  `json:"excludes,omitempty"`
	LocalFingerprint uint64    `json:"localFingerprint,omitempty"`
	LastError        ErrorCode `json:"lastError,omitempty"`
}

// Normalize forces the flag combinations a two-way sync requires. One-way
// syncs keep their flags as given.
func (c *Config) Normalize() {
	if c.Direction == TwoWay {
		c.SyncDeletions = true
		c.ForceOverwrite = false
	}
}

func (c Config) Validate() error {
	if c.ID == "" {
		return errors.New("sync config id is empty")
	}
	if c.Name == "" {
		return errors.New("sync config name is empty")
	}
	if c.LocalPath == "" {
		return errors.New("sync config local path is empty")
	}
	switch c.Direction {
	case Up, Down, TwoWay:
		return nil
	default:
		return fmt.Errorf("invalid sync direction %d", c.Direction)
	}
}

func (c Config) Equal(o Config) bool {
	return c.ID == o.ID &&
		c.Name == o.Name &&
		c.LocalPath == o.LocalPath &&
		c.RemoteID == o.RemoteID &&
		c.RemotePath == o.RemotePath &&
		c.Enabled == o.Enabled &&
		c.Direction == o.Direction &&
		c.SyncDeletions == o.SyncDeletions &&
		c.ForceOverwrite == o.ForceOverwrite &&
		slices.Equal(c.Excludes, o.Excludes) &&
		c.LocalFingerprint == o.LocalFingerprint &&
		c.LastError == o.LastError
}

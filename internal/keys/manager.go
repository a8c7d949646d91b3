// Package keys manages the device's master secret and derives the ciphers
// that seal state at rest. The secret lives in the system keyring when one is
// available and falls back to a key file inside the state directory.
package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/hkdf"
)

const (
	masterKeySize  = 32
	masterKeyItem  = "master-key"
	deviceIDItem   = "device-id"
	keyFileName    = ".keyfile"
	deviceFileName = "device.id"
)

type Options struct {
	// Service is the keyring service name. Defaults to "driftsync".
	Service string
	// StateDir holds the key file and device id when the keyring is not used.
	StateDir string
	// FS defaults to the operating system filesystem.
	FS afero.Fs
	// DisableKeyring forces file-based storage.
	DisableKeyring bool
}

type Manager struct {
	service    string
	stateDir   string
	fs         afero.Fs
	useKeyring bool
	master     []byte
}

func NewManager(opts Options) (*Manager, error) {
	m := &Manager{service: opts.Service, stateDir: opts.StateDir, fs: opts.FS}
	if m.service == "" {
		m.service = "driftsync"
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	m.useKeyring = !opts.DisableKeyring && keyringAvailable(m.service)

	master, err := m.loadOrCreateMaster()
	if err != nil {
		return nil, err
	}
	m.master = master
	return m, nil
}

// UsingKeyring reports whether secrets live in the system keyring.
func (m *Manager) UsingKeyring() bool { return m.useKeyring }

// ForPurpose derives a cipher bound to one use of the master secret, so the
// sync config database and any future stores never share a key.
func (m *Manager) ForPurpose(purpose string) (*Cipher, error) {
	r := hkdf.New(sha256.New, m.master, nil, []byte("driftsync/"+purpose))
	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return NewCipher(key)
}

// DeviceID returns this device's stable identifier, generating one on first
// use.
func (m *Manager) DeviceID() (string, error) {
	if m.useKeyring {
		if id, err := keyring.Get(m.service, deviceIDItem); err == nil && id != "" {
			return id, nil
		}
		id := uuid.New().String()
		if err := keyring.Set(m.service, deviceIDItem, id); err != nil {
			return "", fmt.Errorf("store device id: %w", err)
		}
		return id, nil
	}

	idFile := filepath.Join(m.stateDir, deviceFileName)
	if data, err := afero.ReadFile(m.fs, idFile); err == nil && len(data) > 0 {
		return strings.TrimSpace(string(data)), nil
	}
	id := uuid.New().String()
	if err := m.fs.MkdirAll(m.stateDir, 0o700); err != nil {
		return "", err
	}
	if err := afero.WriteFile(m.fs, idFile, []byte(id), 0o600); err != nil {
		return "", err
	}
	return id, nil
}

func keyringAvailable(service string) bool {
	probe := service + "-probe"
	if err := keyring.Set(service, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(service, probe)
	return true
}

func (m *Manager) loadOrCreateMaster() ([]byte, error) {
	if !m.useKeyring {
		return m.loadOrCreateKeyFile()
	}

	if encoded, err := keyring.Get(m.service, masterKeyItem); err == nil {
		if key, err := base64.StdEncoding.DecodeString(encoded); err == nil && len(key) == masterKeySize {
			return key, nil
		}
		log.Warn("Stored master key is malformed, generating a new one")
	}
	key, err := newMasterKey()
	if err != nil {
		return nil, err
	}
	if err := keyring.Set(m.service, masterKeyItem, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("store master key: %w", err)
	}
	return key, nil
}

func (m *Manager) loadOrCreateKeyFile() ([]byte, error) {
	keyFile := filepath.Join(m.stateDir, keyFileName)
	if data, err := afero.ReadFile(m.fs, keyFile); err == nil {
		key, err := base64.StdEncoding.DecodeString(string(data))
		if err == nil && len(key) == masterKeySize {
			return key, nil
		}
		log.WithField("path", keyFile).Warn("Key file is malformed, generating a new one")
	}

	key, err := newMasterKey()
	if err != nil {
		return nil, err
	}
	if err := m.fs.MkdirAll(m.stateDir, 0o700); err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := afero.WriteFile(m.fs, keyFile, []byte(encoded), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

func newMasterKey() ([]byte, error) {
	key := make([]byte, masterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}
	return key, nil
}

// Package mocks provides test doubles for driftsync's collaborators.
package mocks

import (
	"context"
	"fmt"

	"github.com/driftlabs/driftsync/internal/remote"
)

// RemoteClient is a mock implementation of remote.Client for testing.
// Trees maps root identifiers to the snapshots Tree returns; unknown
// roots fail. TreeFunc overrides the whole lookup when set.
type RemoteClient struct {
	Trees    map[string]*remote.Node
	TreeFunc func(ctx context.Context, rootID string) (*remote.Node, error)

	// Calls records every requested root identifier in order.
	Calls []string
}

// NewRemoteClient creates a mock remote serving the given snapshots.
func NewRemoteClient(trees ...*remote.Node) *RemoteClient {
	c := &RemoteClient{Trees: make(map[string]*remote.Node)}
	for _, tr := range trees {
		c.Trees[tr.ID] = tr
	}
	return c
}

// Tree implements remote.Client.
func (c *RemoteClient) Tree(ctx context.Context, rootID string) (*remote.Node, error) {
	c.Calls = append(c.Calls, rootID)
	if c.TreeFunc != nil {
		return c.TreeFunc(ctx, rootID)
	}
	if tr, ok := c.Trees[rootID]; ok {
		return tr, nil
	}
	return nil, fmt.Errorf("remote root %s not found", rootID)
}

// FailingCipher is a store.Cipher double whose operations can be forced
// to fail, for exercising persistence error paths.
type FailingCipher struct {
	FailEncrypt bool
	FailDecrypt bool
}

func (c FailingCipher) Encrypt(plain []byte) ([]byte, error) {
	if c.FailEncrypt {
		return nil, fmt.Errorf("cipher unavailable")
	}
	return append([]byte("sealed:"), plain...), nil
}

func (c FailingCipher) Decrypt(sealed []byte) ([]byte, error) {
	if c.FailDecrypt || len(sealed) < 7 || string(sealed[:7]) != "sealed:" {
		return nil, fmt.Errorf("authentication failed")
	}
	return sealed[7:], nil
}

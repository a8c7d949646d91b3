// Package testing provides shared fixtures for driftsync tests.
package testing

import (
	"context"
	"testing"

	"github.com/driftlabs/driftsync/internal/remote"
	"github.com/driftlabs/driftsync/internal/store"
)

// TestContext creates a standard test context
func TestContext() context.Context {
	return context.Background()
}

// TestConfig creates a valid two-way sync config for testing
func TestConfig(id string) store.Config {
	return store.Config{
		ID:        id,
		Name:      "docs",
		LocalPath: "/home/u/docs",
		RemoteID:  "remote-" + id,
		Enabled:   true,
		Direction: store.TwoWay,
	}
}

// TestUploadConfig creates an upload-only sync config for testing
func TestUploadConfig(id string) store.Config {
	cfg := TestConfig(id)
	cfg.Direction = store.Up
	cfg.SyncDeletions = false
	return cfg
}

// TestRemoteTree creates a small remote snapshot: a root folder holding
// one subfolder with a file, and one top-level file.
func TestRemoteTree(rootID string) *remote.Node {
	root := &remote.Node{ID: rootID, IsDir: true, MTime: 100}
	sub := root.AddChild(&remote.Node{ID: rootID + "-d0", Name: "photos", IsDir: true, MTime: 110})
	sub.AddChild(&remote.Node{ID: rootID + "-f0", Name: "cat.jpg", Size: 2048, MTime: 120})
	root.AddChild(&remote.Node{ID: rootID + "-f1", Name: "notes.txt", Size: 64, MTime: 130})
	return root
}

// AssertNoError fails the test when err is non-nil
func AssertNoError(t *testing.T, err error, operation string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error %s: %v", operation, err)
	}
}

// AssertEqual fails the test when got differs from want
func AssertEqual[T comparable](t *testing.T, got, want T, what string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

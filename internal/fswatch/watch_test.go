package fswatch

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlabs/driftsync/internal/sync/exclude"
)

func TestGetPathsToWatch(t *testing.T) {
	defer func() { fs = afero.NewOsFs() }()
	fs = afero.NewMemMapFs()

	dirs := []string{
		"/data/docs", "/data/docs/deep", "/data/.git", "/data/.debris/old",
	}
	files := []string{
		"/data/notes.txt", "/data/docs/a.txt", "/data/docs/cache.tmp",
		"/data/.git/config", "/data/.debris/old/gone.txt",
	}
	for _, dir := range dirs {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}
	for _, file := range files {
		require.NoError(t, afero.WriteFile(fs, file, []byte("testfile"), 0644))
	}

	policy := exclude.PolicyFor("/data", ".debris", exclude.New(nil))
	paths, err := getPathsToWatch("/data", policy)
	require.NoError(t, err)

	expPaths := []string{
		"/data", "/data/docs", "/data/docs/a.txt", "/data/docs/deep", "/data/notes.txt",
	}
	sort.Strings(paths)
	assert.Equal(t, expPaths, paths)
}

func TestGetPathsToWatchNilPolicy(t *testing.T) {
	defer func() { fs = afero.NewOsFs() }()
	fs = afero.NewMemMapFs()

	require.NoError(t, fs.MkdirAll("/data/sub", 0755))
	require.NoError(t, afero.WriteFile(fs, "/data/sub/f.tmp", []byte("x"), 0644))

	paths, err := getPathsToWatch("/data", nil)
	require.NoError(t, err)

	sort.Strings(paths)
	assert.Equal(t, []string{"/data", "/data/sub", "/data/sub/f.tmp"}, paths)
}

func TestWatchDeliversTrigger(t *testing.T) {
	fs = afero.NewOsFs()
	dir := t.TempDir()

	w, err := Watch(dir, nil)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, w.Close())
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("change"), 0644))

	select {
	case <-w.Updates:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change trigger")
	}
}

func TestCombineUpdates(t *testing.T) {
	updates := make(chan fsnotify.Event, 1024)
	addEvents := func(num int) {
		for i := 0; i < num; i++ {
			updates <- fsnotify.Event{}
		}
	}

	// Seed with events.
	numUpdates := 100
	addEvents(numUpdates)
	combined := combineUpdates(updates)

	// Assert that the events are being combined.
	numCombined := countEvents(combined)
	assert.True(t, numCombined < numUpdates,
		"expected less combined events (%d) than %d", numCombined, numUpdates)

	// Add more events.
	addEvents(100)
	<-combined
}

func countEvents(c chan struct{}) (n int) {
	// Block until the first event.
	<-c
	n++

	// Count events until there hasn't been a new one in 500 milliseconds.
	for {
		select {
		case <-c:
			n++
		case <-time.After(500 * time.Millisecond):
			return n
		}
	}
}

func TestDebounceSingleTrigger(t *testing.T) {
	clock := clockwork.NewFakeClock()
	in := make(chan struct{}, 16)
	out := Debounce(clock, in, time.Second)

	in <- struct{}{}
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	select {
	case _, ok := <-out:
		require.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for debounced trigger")
	}

	select {
	case <-out:
		t.Fatal("unexpected extra trigger")
	default:
	}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	clock := clockwork.NewFakeClock()
	in := make(chan struct{}, 16)
	out := Debounce(clock, in, time.Second)

	for i := 0; i < 5; i++ {
		in <- struct{}{}
	}
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	select {
	case _, ok := <-out:
		require.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for debounced trigger")
	}

	// The burst may have restarted the quiet period, but with the clock
	// frozen no further trigger can fire.
	select {
	case <-out:
		t.Fatal("burst produced more than one trigger")
	default:
	}
}

func TestDebounceFlushesOnClose(t *testing.T) {
	clock := clockwork.NewFakeClock()
	in := make(chan struct{}, 16)
	out := Debounce(clock, in, time.Second)

	in <- struct{}{}
	clock.BlockUntil(1)
	close(in)

	select {
	case _, ok := <-out:
		require.True(t, ok, "pending trigger should flush before close")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for flushed trigger")
	}

	select {
	case _, ok := <-out:
		require.False(t, ok, "output should close after input closes")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for output close")
	}
}

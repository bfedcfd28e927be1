package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcher_ReportsChangedUnits(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "nested"), 0755))

	w, err := New(root, nil, 50*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { changes <- paths })
	}()

	unit := filepath.Join(root, "nested", "test_arrays.go")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(unit, []byte("package arrays\n"), 0644))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{unit}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Settled(t *testing.T) {
	w := &Watcher{debounceMap: make(map[string]time.Time), debounceDur: time.Second}
	now := time.Now()
	w.debounceMap["b/test_b.go"] = now.Add(-2 * time.Second)
	w.debounceMap["a/test_a.go"] = now.Add(-time.Second)
	w.debounceMap["c/test_c.go"] = now

	assert.Equal(t, []string{"a/test_a.go", "b/test_b.go"}, w.settled(now))
	assert.Empty(t, w.settled(now))
	assert.Equal(t, []string{"c/test_c.go"}, w.settled(now.Add(time.Second)))
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), nil, 0, zaptest.NewLogger(t))
	assert.Error(t, err)
}

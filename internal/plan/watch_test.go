package plan_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xtding233/wishcalc/internal/plan"
)

func TestFileWatcher_ReportsChanges(t *testing.T) {
	dir, p := newTree(t)

	var mu sync.Mutex
	changed := map[string]bool{}
	w := plan.NewFileWatcher([]string{dir}, 10*time.Millisecond, zaptest.NewLogger(t), func(path string) {
		mu.Lock()
		changed[path] = true
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// let the priming scan run before touching anything
	time.Sleep(50 * time.Millisecond)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(p.CatalogPath(), future, future))
	fresh := filepath.Join(dir, "accounts", "alt.yaml")
	require.NoError(t, os.WriteFile(fresh, []byte("notes: alt\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return changed[p.CatalogPath()] && changed[fresh]
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	require.False(t, changed[p.AccountPath("main")])
	mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

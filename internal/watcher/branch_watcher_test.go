package watcher

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	run("init", "-q")
	run("checkout", "-q", "-b", "main")
	run("config", "user.email", "[email protected]")
	run("config", "user.name", "test")
}

func TestBranchWatcherDetectsSwitch(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	initGitRepo(t, dir)

	var mu sync.Mutex
	var oldSeen, newSeen string
	bw := NewBranchWatcher(dir)
	bw.Interval = 20 * time.Millisecond
	bw.OnBranchChange = func(old, n string) {
		mu.Lock()
		oldSeen, newSeen = old, n
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)
	defer bw.Stop()

	cmd := exec.Command("git", "checkout", "-q", "-b", "feature")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		got := newSeen
		mu.Unlock()
		if got != "" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "main", oldSeen)
	require.Equal(t, "feature", newSeen)
}

package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/sourcelens/semindex/internal/hashcache"
)

// DefaultBranchPollInterval is the default polling cadence (spec.md
// §4.9).
const DefaultBranchPollInterval = 5 * time.Second

// BranchWatcher polls the repository's current branch and reports
// changes.
type BranchWatcher struct {
	Interval       time.Duration
	OnBranchChange func(old, new string)

	repoDir string
	cancel  context.CancelFunc
	doneCh  chan struct{}
	mu      sync.Mutex
	active  bool
}

// NewBranchWatcher constructs a BranchWatcher for repoDir.
func NewBranchWatcher(repoDir string) *BranchWatcher {
	return &BranchWatcher{
		Interval: DefaultBranchPollInterval,
		repoDir:  repoDir,
	}
}

// Start begins polling in the background.
func (bw *BranchWatcher) Start(ctx context.Context) {
	bw.mu.Lock()
	if bw.active {
		bw.mu.Unlock()
		return
	}
	innerCtx, cancel := context.WithCancel(ctx)
	bw.cancel = cancel
	bw.doneCh = make(chan struct{})
	bw.active = true
	bw.mu.Unlock()

	go bw.loop(innerCtx)
}

// Stop stops the watcher cleanly, blocking until its goroutine exits.
func (bw *BranchWatcher) Stop() {
	bw.mu.Lock()
	if !bw.active {
		bw.mu.Unlock()
		return
	}
	cancel := bw.cancel
	done := bw.doneCh
	bw.mu.Unlock()

	cancel()
	<-done

	bw.mu.Lock()
	bw.active = false
	bw.mu.Unlock()
}

func (bw *BranchWatcher) loop(ctx context.Context) {
	defer close(bw.doneCh)

	interval := bw.Interval
	if interval <= 0 {
		interval = DefaultBranchPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := hashcache.CurrentBranch(bw.repoDir)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := hashcache.CurrentBranch(bw.repoDir)
			if current == last {
				continue
			}
			old := last
			last = current
			if bw.OnBranchChange != nil {
				bw.OnBranchChange(old, current)
			}
		}
	}
}

package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/sourcelens/semindex/internal/status"
)

// progressReporter renders an index run's progress as a progress bar,
// subscribing to the status Manager's state transitions. Grounded on
// the teacher's internal/cli/progress.go CLIProgressReporter, adapted
// from its stage-callback shape to a single status.Listener since
// status.Manager reports one Progress snapshot per transition rather
// than per-stage callbacks.
type progressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newProgressReporter(quiet bool) *progressReporter {
	return &progressReporter{quiet: quiet}
}

// attach registers the reporter as a listener on mgr; status.Manager
// has no remove hook, so reporters are created fresh per command
// invocation.
func (r *progressReporter) attach(mgr *status.Manager) {
	mgr.AddListener(func(old, next status.State) {
		r.onTransition(next, mgr.Progress())
	})
}

func (r *progressReporter) onTransition(state status.State, p status.Progress) {
	if r.quiet {
		return
	}

	switch state {
	case status.StateIndexing:
		if r.bar == nil && p.FilesTotal > 0 {
			r.bar = progressbar.NewOptions(p.FilesTotal,
				progressbar.OptionSetDescription("Indexing files"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionOnCompletion(func() { fmt.Println() }),
			)
		}
		if r.bar != nil {
			_ = r.bar.Set(p.FilesProcessed)
		}
	case status.StateIndexed:
		if r.bar != nil {
			_ = r.bar.Finish()
			r.bar = nil
		}
	case status.StateError:
		if r.bar != nil {
			_ = r.bar.Finish()
			r.bar = nil
		}
	}
}

// formatNumber formats an integer with thousands separators, e.g.
// 1234 -> "1,234".
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

// formatDuration renders a duration compactly, e.g. "1h 30m", "5s".
func formatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", secs)
}

package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sourcelens/semindex/internal/status"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		number   int
		expected string
	}{
		{"single digit", 5, "5"},
		{"double digit", 42, "42"},
		{"triple digit", 999, "999"},
		{"thousands", 1234, "1,234"},
		{"ten thousands", 12345, "12,345"},
		{"millions", 1234567, "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, formatNumber(tt.number))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"seconds", 5 * time.Second, "5s"},
		{"minutes", 5 * time.Minute, "5m"},
		{"hours and minutes", 90 * time.Minute, "1h 30m"},
		{"whole hours", 2 * time.Hour, "2h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, formatDuration(tt.d))
		})
	}
}

func TestProgressReporterQuietSkipsBar(t *testing.T) {
	t.Parallel()

	r := newProgressReporter(true)
	r.onTransition(status.StateIndexing, status.Progress{FilesTotal: 10, FilesProcessed: 1})
	assert.Nil(t, r.bar, "quiet reporter must never build a bar")
}

func TestProgressReporterBuildsAndFinishesBar(t *testing.T) {
	t.Parallel()

	r := newProgressReporter(false)
	r.onTransition(status.StateIndexing, status.Progress{FilesTotal: 10, FilesProcessed: 0})
	assert.NotNil(t, r.bar)

	r.onTransition(status.StateIndexing, status.Progress{FilesTotal: 10, FilesProcessed: 5})
	assert.NotNil(t, r.bar)

	r.onTransition(status.StateIndexed, status.Progress{FilesTotal: 10, FilesProcessed: 10})
	assert.Nil(t, r.bar, "bar must be released once indexing finishes")
}

func TestProgressReporterAttachSubscribesToManager(t *testing.T) {
	t.Parallel()

	r := newProgressReporter(false)
	mgr := status.New()
	r.attach(mgr)

	mgr.SetProgress(status.Progress{FilesTotal: 4, FilesProcessed: 0})
	mgr.Transition(status.StateIndexing)
	assert.NotNil(t, r.bar)

	mgr.Transition(status.StateIndexed)
	assert.Nil(t, r.bar)
}

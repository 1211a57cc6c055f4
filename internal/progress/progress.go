// Package progress reports long-running pipeline progress on the
// terminal. Workers increment a shared atomic counter; a background
// poller mirrors the counter into the rendered bar at a fixed interval,
// so the hot path never touches the display.
package progress

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// pollInterval bounds how often the poller samples the counter.
const pollInterval = 200 * time.Millisecond

// Counter is the increment-only capability handed to workers.
type Counter interface {
	// Inc adds n to the counter. Safe for concurrent use.
	Inc(n uint64)
}

type atomicCounter struct {
	value atomic.Uint64
}

func (c *atomicCounter) Inc(n uint64) {
	c.value.Add(n)
}

// Reporter owns one progress bar plus the poller goroutine that keeps
// it in sync with the worker-side counter.
type Reporter struct {
	total   uint64
	counter atomicCounter

	writer  progress.Writer
	tracker *progress.Tracker

	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	waitOnce sync.Once
}

// NewReporter builds a reporter for total units of work, labeled with
// message. Output goes to out (typically os.Stderr).
func NewReporter(total uint64, message string, out io.Writer) *Reporter {
	writer := progress.NewWriter()
	writer.SetOutputWriter(out)
	writer.SetUpdateFrequency(pollInterval)
	writer.SetTrackerPosition(progress.PositionRight)
	writer.Style().Visibility.ETA = true
	writer.Style().Visibility.Speed = true

	tracker := &progress.Tracker{
		Message: message,
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}

	return &Reporter{
		total:   total,
		writer:  writer,
		tracker: tracker,
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

// Counter returns the handle workers use to record completed units.
func (r *Reporter) Counter() Counter {
	return &r.counter
}

// Start renders the bar and launches the poller. A zero total finishes
// immediately.
func (r *Reporter) Start() {
	r.writer.AppendTracker(r.tracker)

	go r.writer.Render()
	go r.poll()
}

func (r *Reporter) poll() {
	defer close(r.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		current := r.counter.value.Load()
		r.tracker.SetValue(int64(current))

		if current >= r.total {
			r.tracker.MarkAsDone()

			return
		}

		select {
		case <-ticker.C:
		case <-r.stop:
			r.tracker.MarkAsErrored()

			return
		}
	}
}

// Abort terminates the poller without waiting for the counter to reach
// the total. Used on the fail-fast path so Wait cannot block forever.
func (r *Reporter) Abort() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Wait blocks until the counter reaches the total, then tears the bar
// down. Call after all workers have finished.
func (r *Reporter) Wait() {
	r.waitOnce.Do(func() {
		<-r.done

		r.writer.Stop()

		// Let the writer flush its final frame before returning the
		// terminal to the caller.
		for r.writer.IsRenderInProgress() {
			time.Sleep(10 * time.Millisecond)
		}
	})
}

package progress_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Sumatoshi-tech/linestat/internal/progress"
)

const waitTimeout = 5 * time.Second

// waitDone fails the test if the reporter does not settle in time.
func waitDone(t *testing.T, reporter *progress.Reporter) {
	t.Helper()

	done := make(chan struct{})

	go func() {
		reporter.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("reporter did not finish")
	}
}

func TestReporter_CompletesWhenCounterReachesTotal(t *testing.T) {
	t.Parallel()

	const total = 1000

	reporter := progress.NewReporter(total, "scanning", io.Discard)
	reporter.Start()

	counter := reporter.Counter()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range total / 4 {
				counter.Inc(1)
			}
		}()
	}

	wg.Wait()
	waitDone(t, reporter)
}

func TestReporter_ZeroTotalFinishesImmediately(t *testing.T) {
	t.Parallel()

	reporter := progress.NewReporter(0, "empty", io.Discard)
	reporter.Start()

	waitDone(t, reporter)
}

func TestReporter_AbortUnblocksWait(t *testing.T) {
	t.Parallel()

	reporter := progress.NewReporter(100, "doomed", io.Discard)
	reporter.Start()

	// Counter never reaches the total; only Abort can release Wait.
	reporter.Counter().Inc(3)
	reporter.Abort()

	waitDone(t, reporter)
}

func TestReporter_WaitIsIdempotent(t *testing.T) {
	t.Parallel()

	reporter := progress.NewReporter(1, "twice", io.Discard)
	reporter.Start()
	reporter.Counter().Inc(1)

	waitDone(t, reporter)
	waitDone(t, reporter)
}

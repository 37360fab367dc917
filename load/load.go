// Package load blocks until an asynchronously populated native object is
// ready.
//
// libspotify fills in objects from its own thread and only makes progress
// while the application keeps calling sp_session_process_events. A Waiter
// therefore alternates between driving that pump, checking the object's
// readiness and sleeping for a short poll interval.
package load

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/internal/metrics"
)

// ErrTimeout is returned when the deadline passes before the object loads.
var ErrTimeout = errors.New("load: timed out waiting for object to load")

// Forever disables the deadline.
const Forever time.Duration = math.MaxInt64

// DefaultPollInterval is used when Waiter.PollInterval is zero.
const DefaultPollInterval = 10 * time.Millisecond

// Loadable is anything that can report whether it has finished loading.
type Loadable interface {
	IsLoaded() bool
}

// Notifier is implemented by objects whose native layer signals completion.
// The wait wakes as soon as the channel is closed or receives, instead of
// sleeping out the full poll interval.
type Notifier interface {
	LoadedSignal() <-chan struct{}
}

// Waiter holds the wait configuration. The zero value waits without a pump
// at DefaultPollInterval.
type Waiter struct {
	// Pump drives the native library's pending work. It is called once per
	// iteration and must return quickly.
	Pump func()

	// PollInterval is the pause between readiness checks.
	PollInterval time.Duration

	// sleep is replaced in tests.
	sleep func(d time.Duration, wake <-chan struct{}) bool
}

// Until blocks until obj.IsLoaded() is true and returns obj, so calls compose:
//
//	img, err := load.Until(w, img, 5*time.Second)
//
// A timeout of Forever waits indefinitely. A timeout of zero or less checks
// once and fails immediately, without pumping or sleeping. The object's error
// state is not inspected; callers check it separately.
func Until[T Loadable](w *Waiter, obj T, timeout time.Duration) (T, error) {
	if obj.IsLoaded() {
		return obj, nil
	}
	if timeout <= 0 {
		return obj, timedOut(obj, 0)
	}
	if w == nil {
		w = &Waiter{}
	}

	start := time.Now()
	var deadline time.Time
	if timeout != Forever {
		deadline = start.Add(timeout)
	}

	var wake <-chan struct{}
	if n, ok := any(obj).(Notifier); ok {
		wake = n.LoadedSignal()
	}

	for {
		if w.Pump != nil {
			w.Pump()
		}
		if obj.IsLoaded() {
			return obj, nil
		}

		pause := w.interval()
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return obj, timedOut(obj, time.Since(start))
			}
			pause = min(pause, remaining)
		}
		if w.doSleep(pause, wake) {
			// A signal fires once; fall back to plain polling afterwards.
			wake = nil
		}
	}
}

func (w *Waiter) interval() time.Duration {
	if w.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return w.PollInterval
}

// doSleep pauses for d, returning true if wake fired first.
func (w *Waiter) doSleep(d time.Duration, wake <-chan struct{}) bool {
	if w.sleep != nil {
		return w.sleep(d, wake)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return false
	case <-wake:
		return true
	}
}

func timedOut(obj any, elapsed time.Duration) error {
	metrics.LoadTimeouts.Inc()
	logging.Logger().Debug("load timed out",
		zap.String("type", fmt.Sprintf("%T", obj)),
		zap.Duration("elapsed", elapsed))
	return fmt.Errorf("%w: %T after %s", ErrTimeout, obj, elapsed.Round(time.Millisecond))
}

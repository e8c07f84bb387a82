package daemon

import (
	"context"
	"time"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

// Debouncer coalesces bursts of rebuild requests into a single firing:
// a quiet window must elapse since the last request, but the firing cannot
// be postponed past the max delay from the first request of the burst.
//
// It is safe to run as a single goroutine, with Request called from any.
type Debouncer struct {
	quietWindow time.Duration
	maxDelay    time.Duration
	requests    chan string
}

func NewDebouncer(quietWindow, maxDelay time.Duration) (*Debouncer, error) {
	if quietWindow <= 0 {
		return nil, apierrors.ValidationFailed("quiet_window", "must be positive")
	}
	if maxDelay <= 0 {
		return nil, apierrors.ValidationFailed("max_delay", "must be positive")
	}
	return &Debouncer{
		quietWindow: quietWindow,
		maxDelay:    maxDelay,
		requests:    make(chan string, 64),
	}, nil
}

// Request records a rebuild trigger. Never blocks; when the buffer is full
// the request is dropped, which is harmless since one is already pending.
func (d *Debouncer) Request(reason string) {
	select {
	case d.requests <- reason:
	default:
	}
}

// Run processes requests until the context is cancelled, invoking fire with
// the most recent reason each time a burst settles.
func (d *Debouncer) Run(ctx context.Context, fire func(reason string)) {
	newStoppedTimer := func() *time.Timer {
		t := time.NewTimer(time.Hour)
		if !t.Stop() {
			<-t.C
		}
		return t
	}
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	defer quietTimer.Stop()
	defer maxTimer.Stop()

	resetTimer := func(t *time.Timer, after time.Duration) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(after)
	}
	stopTimer := func(t *time.Timer) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
	}

	var (
		quietC  <-chan time.Time
		maxC    <-chan time.Time
		pending bool
		reason  string
	)
	emit := func() {
		stopTimer(quietTimer)
		stopTimer(maxTimer)
		quietC, maxC = nil, nil
		pending = false
		fire(reason)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case r := <-d.requests:
			reason = r
			if !pending {
				pending = true
				resetTimer(maxTimer, d.maxDelay)
				maxC = maxTimer.C
			}
			resetTimer(quietTimer, d.quietWindow)
			quietC = quietTimer.C
		case <-quietC:
			emit()
		case <-maxC:
			emit()
		}
	}
}

package fswatch

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Debounce forwards triggers from in once the input has been quiet for
// delay: a burst of changes produces a single trigger after the burst
// settles. The returned channel closes when in closes, after flushing
// any pending trigger.
func Debounce(clock clockwork.Clock, in <-chan struct{}, delay time.Duration) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			if _, ok := <-in; !ok {
				return
			}
			timer := clock.NewTimer(delay)
		quiet:
			for {
				select {
				case _, ok := <-in:
					if !ok {
						timer.Stop()
						emit(out)
						return
					}
					timer.Reset(delay)
				case <-timer.Chan():
					break quiet
				}
			}
			emit(out)
		}
	}()
	return out
}

func emit(out chan struct{}) {
	select {
	case out <- struct{}{}:
	default:
	}
}

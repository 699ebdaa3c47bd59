package reactive

import "time"

// Observer receives runtime events. Implementations must be cheap; they are
// called inline on the hot path.
type Observer interface {
	EffectRun(name string, computed bool)
	JobQueued(deduplicated bool)
	Flushed(jobs int, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) EffectRun(string, bool) {}
func (nopObserver) JobQueued(bool) {}
func (nopObserver) Flushed(int, time.Duration) {}

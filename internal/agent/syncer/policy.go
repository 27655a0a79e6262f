package syncer

import "time"

// Policy decides whether a failed delivery attempt may be retried and how
// long to hold off before the next one. attempt is the count of consecutive
// failures so far, starting at 1.
type Policy interface {
	NextDelay(attempt int, lastErr error) (time.Duration, bool)
}

// EventDriven retries on every future trigger with no hold-off. This matches
// the original fire-and-retry behavior where the next capture or session
// stop drives the retry.
type EventDriven struct{}

func (EventDriven) NextDelay(int, error) (time.Duration, bool) {
	return 0, true
}

// ExponentialBackoff doubles the hold-off per consecutive failure, capped at
// Max. A zero Max means uncapped, like a zero MaxAttempts means never give
// up.
type ExponentialBackoff struct {
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int
}

func (p ExponentialBackoff) NextDelay(attempt int, _ error) (time.Duration, bool) {
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		return 0, false
	}

	delay := p.Base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.Max > 0 && delay >= p.Max {
			return p.Max, true
		}
	}
	return delay, true
}

package downloader

import "sync"

// Breaker tracks consecutive download failures. Once the count strictly
// exceeds the threshold it trips, permanently for the run: a later reset
// of the counter never untrips it.
//
// Breaker is safe for concurrent use from multiple workers.
type Breaker struct {
	mu          sync.Mutex
	threshold   int
	consecutive int
	tripped     bool
}

// NewBreaker creates a breaker that trips once consecutive failures
// strictly exceed threshold.
func NewBreaker(threshold int) *Breaker {
	return &Breaker{threshold: threshold}
}

// Observe records one outcome. A success resets the consecutive-failure
// counter; a failure increments it and trips the breaker when the count
// exceeds the threshold.
func (b *Breaker) Observe(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !failed {
		b.consecutive = 0
		return
	}

	b.consecutive++
	if b.consecutive > b.threshold {
		b.tripped = true
	}
}

// Tripped reports whether the breaker has tripped. The transition is
// one-way within a run.
func (b *Breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

// Consecutive returns the current consecutive-failure count.
func (b *Breaker) Consecutive() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutive
}

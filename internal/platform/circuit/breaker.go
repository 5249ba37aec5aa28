// Package circuit provides a consecutive-failure circuit breaker guarding
// fail-safe background operations such as analytics uploads.
package circuit

import "sync"

// A Breaker is closed while the guarded operation is healthy. After
// FailureThreshold consecutive failures it opens; callers should then stop
// issuing the operation except as an occasional probe. SuccessThreshold
// consecutive successful probes close it again.
type Breaker struct {
	mu sync.Mutex

	open             bool
	failures         int
	probeSuccesses   int
	failureThreshold int
	successThreshold int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
// Default is 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successful probes close an
// open circuit. Default is 1.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// New creates a closed breaker.
func New(opts ...Option) *Breaker {
	b := &Breaker{
		failureThreshold: 5,
		successThreshold: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// IsOpen reports whether the circuit is open.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// RecordFailure records a failed operation. It returns true only when this
// failure transitions the circuit from closed to open.
func (b *Breaker) RecordFailure() (opened bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeSuccesses = 0
	if b.open {
		return false
	}
	b.failures++
	if b.failures >= b.failureThreshold {
		b.open = true
		return true
	}
	return false
}

// RecordSuccess records a successful operation. It returns true only when
// this success transitions the circuit from open to closed.
func (b *Breaker) RecordSuccess() (closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		b.failures = 0
		return false
	}
	b.probeSuccesses++
	if b.probeSuccesses >= b.successThreshold {
		b.open = false
		b.failures = 0
		b.probeSuccesses = 0
		return true
	}
	return false
}

// Reset forces the breaker back to a closed state with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.failures = 0
	b.probeSuccesses = 0
}

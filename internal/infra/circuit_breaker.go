package infra

// circuit_breaker.go — Closed → Open → Half-Open breaker guarding the SMTP
// relay. When the relay is down we want delivery jobs to fast-fail into the
// retry queue instead of hanging a worker per job on dial timeouts.

import (
	"errors"
	"sync"
	"time"
)

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // normal — requests flow
	CBOpen                    // tripped — fast-fail all requests
	CBHalfOpen                // probing — one request allowed
)

// String returns a human-readable state name (for health endpoints / logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the CB is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tunable parameters. Zero values fall back to
// the defaults noted per field.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open (default: 5)
	SuccessThreshold int           // consecutive successes in half-open to close (default: 2)
	OpenTimeout      time.Duration // how long to stay open before probing (default: 60s)

	// OnStateChange, when set, is invoked (outside the lock) after every
	// transition. Used to log breaker flips around the SMTP relay.
	OnStateChange func(from, to CBState)
}

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CBState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	onStateChange    func(from, to CBState)
}

// NewCircuitBreaker creates a CB in Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		state:            CBClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
		onStateChange:    cfg.OnStateChange,
	}
}

// transition switches states under lock and returns the notification to run
// after the lock is released.
func (cb *CircuitBreaker) transition(to CBState) func() {
	from := cb.state
	cb.state = to
	if cb.onStateChange == nil || from == to {
		return nil
	}
	notify := cb.onStateChange
	return func() { notify(from, to) }
}

// State returns the current CB state. An elapsed open timeout moves the
// breaker to half-open as a side effect.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	var notify func()
	if cb.state == CBOpen && time.Since(cb.lastFailureTime) >= cb.openTimeout {
		notify = cb.transition(CBHalfOpen)
		cb.successCount = 0
	}
	state := cb.state
	cb.mu.Unlock()

	if notify != nil {
		notify()
	}
	return state
}

// Execute runs fn through the circuit breaker.
// Returns ErrCircuitOpen immediately if the CB is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	var notify func()
	if err != nil {
		notify = cb.recordFailure()
	} else {
		notify = cb.recordSuccess()
	}
	cb.mu.Unlock()

	if notify != nil {
		notify()
	}
	return err
}

// recordFailure must be called under lock.
func (cb *CircuitBreaker) recordFailure() func() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.successCount = 0
			return cb.transition(CBOpen)
		}
	case CBHalfOpen:
		// Probe failed — back to open
		cb.failureCount = 0
		return cb.transition(CBOpen)
	}
	return nil
}

// recordSuccess must be called under lock.
func (cb *CircuitBreaker) recordSuccess() func() {
	switch cb.state {
	case CBClosed:
		cb.failureCount = 0
	case CBHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.failureCount = 0
			cb.successCount = 0
			return cb.transition(CBClosed)
		}
	}
	return nil
}

package transport

import (
	"sync"
	"time"

	"github.com/claudefs/claudefs/pkg/errors"
)

// BreakerState mirrors internal/circuit.State but the transport breaker
// trips on a strict count of *consecutive* failures rather than a failure
// ratio over a rolling window — spec.md §4.2.4 and testable property 13
// require exactly failure_threshold consecutive failures to open, and
// exactly success_threshold consecutive successes to close again.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerConfig configures the consecutive-failure circuit breaker.
type BreakerConfig struct {
	FailureThreshold    uint32
	SuccessThreshold    uint32
	OpenDuration        time.Duration
	HalfOpenMaxRequests uint32
	OnStateChange       func(from, to BreakerState)
}

// CircuitBreaker implements the Closed/Open/HalfOpen state machine of
// spec.md §4.2.4, grounded on internal/circuit.CircuitBreaker's lock and
// Execute shape but with consecutive-count trip logic instead of a ratio.
type CircuitBreaker struct {
	mu     sync.Mutex
	config BreakerConfig

	state              BreakerState
	consecutiveFail    uint32
	consecutiveSuccess uint32
	openedAt           time.Time
	halfOpenAdmitted   uint32
}

// NewCircuitBreaker constructs a breaker in the Closed state.
func NewCircuitBreaker(config BreakerConfig) *CircuitBreaker {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 2
	}
	if config.HalfOpenMaxRequests == 0 {
		config.HalfOpenMaxRequests = 1
	}
	return &CircuitBreaker{config: config, state: BreakerClosed}
}

// State returns the current state, resolving an expired Open window into
// HalfOpen as a side effect — mirroring internal/circuit's currentState.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.resolveOpenExpiry(time.Now())
	return cb.state
}

func (cb *CircuitBreaker) resolveOpenExpiry(now time.Time) {
	if cb.state == BreakerOpen && now.Sub(cb.openedAt) >= cb.config.OpenDuration {
		cb.transition(BreakerHalfOpen)
		cb.halfOpenAdmitted = 0
	}
}

func (cb *CircuitBreaker) transition(to BreakerState) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.consecutiveFail = 0
	cb.consecutiveSuccess = 0
	if to == BreakerOpen {
		cb.openedAt = time.Now()
	}
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// Allow reports whether a new call may proceed, admitting at most
// HalfOpenMaxRequests concurrent probes while HalfOpen.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.resolveOpenExpiry(time.Now())

	switch cb.state {
	case BreakerOpen:
		return errors.NewError(errors.ErrCodeCircuitOpen, "circuit breaker open")
	case BreakerHalfOpen:
		if cb.halfOpenAdmitted >= cb.config.HalfOpenMaxRequests {
			return errors.NewError(errors.ErrCodeCircuitOpen, "circuit breaker half-open limit reached")
		}
		cb.halfOpenAdmitted++
	}
	return nil
}

// RecordSuccess registers a successful call outcome.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveFail = 0

	switch cb.state {
	case BreakerHalfOpen:
		if cb.halfOpenAdmitted > 0 {
			cb.halfOpenAdmitted--
		}
		cb.consecutiveSuccess++
		if cb.consecutiveSuccess >= cb.config.SuccessThreshold {
			cb.transition(BreakerClosed)
		}
	case BreakerClosed:
		cb.consecutiveSuccess++
	}
}

// RecordFailure registers a failed call outcome.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.consecutiveSuccess = 0

	switch cb.state {
	case BreakerClosed:
		cb.consecutiveFail++
		if cb.consecutiveFail >= cb.config.FailureThreshold {
			cb.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		cb.transition(BreakerOpen)
	}
}

// Execute runs fn if the breaker currently allows it, recording the
// outcome against the state machine.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}
	return err
}

package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

type Config struct {
	// Window is the number of most recent calls tracked while closed.
	Window int `yaml:"window" envconfig:"CB_WINDOW"`
	// FailureRatio in the window that opens the breaker.
	FailureRatio float64 `yaml:"failureRatio" envconfig:"CB_FAILURE_RATIO"`
	// Cooldown before an open breaker lets a probe through.
	Cooldown time.Duration `yaml:"cooldown" envconfig:"CB_COOLDOWN"`
	// RecoveryCalls is the number of consecutive successes in half-open needed to close.
	RecoveryCalls int `yaml:"recoveryCalls" envconfig:"CB_RECOVERY_CALLS"`
}

type circuitBreaker struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	state    Status
	openedAt time.Time
	// ring buffer of call outcomes, true means failed
	outcomes  []bool
	pos       int
	successes int
}

type CircuitBreaker interface {
	Call(fn func() error) error
	State() Status
	Reset()
}

var ErrOpenCB = errors.New("circuit breaker is open")

func New(cfg Config) CircuitBreaker {
	return newWithClock(cfg, time.Now)
}

func newWithClock(cfg Config, now func() time.Time) *circuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 10
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.RecoveryCalls <= 0 {
		cfg.RecoveryCalls = 1
	}
	return &circuitBreaker{
		cfg:      cfg,
		now:      now,
		state:    Closed,
		outcomes: make([]bool, cfg.Window),
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			cb.mu.Unlock()
			return ErrOpenCB
		}
		cb.state = HalfOpen
		cb.successes = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.successes++
		if cb.successes >= cb.cfg.RecoveryCalls {
			cb.reset()
		}
		return nil
	}

	cb.outcomes[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.outcomes)

	fails := 0
	for _, failed := range cb.outcomes {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.outcomes)) >= cb.cfg.FailureRatio {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.outcomes {
		cb.outcomes[i] = false
	}
	cb.successes = 0
	cb.pos = 0
	cb.state = Closed
}

package marine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

func isFeedFailure(err error) bool {
	return errors.Is(err, ErrFeedUnavailable) || errors.Is(err, ErrMalformedPayload)
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// FeedBreakerConfig holds the trip thresholds for the feed breaker.
type FeedBreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // probe successes required to close again
	CoolDown         time.Duration // how long the breaker stays open
	ProbeLimit       int           // concurrent probes allowed while half-open
}

// FeedBreakerStats holds cumulative counters for the feed breaker.
type FeedBreakerStats struct {
	Requests     int64     `json:"requests"`
	Failures     int64     `json:"failures"`
	Rejected     int64     `json:"rejected"`
	StateChanges int64     `json:"state_changes"`
	LastFailure  time.Time `json:"last_failure"`
}

// FeedBreaker stops hammering the marine feed once it starts failing.
// After FailureThreshold consecutive feed errors the breaker opens and
// requests fail fast with ErrFeedUnavailable; after CoolDown it lets a
// few probes through and closes again once enough of them succeed.
type FeedBreaker struct {
	cfg    FeedBreakerConfig
	logger *logrus.Logger

	mu          sync.Mutex
	state       breakerState
	failures    int
	successes   int
	probes      int
	lastChange  time.Time
	lastFailure time.Time
	stats       FeedBreakerStats
}

// NewFeedBreaker creates a feed breaker with sane defaults for any
// unset threshold.
func NewFeedBreaker(cfg FeedBreakerConfig, logger *logrus.Logger) *FeedBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 60 * time.Second
	}
	if cfg.ProbeLimit <= 0 {
		cfg.ProbeLimit = 3
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &FeedBreaker{
		cfg:        cfg,
		logger:     logger,
		state:      breakerClosed,
		lastChange: time.Now(),
	}
}

// Do runs fn under breaker protection. The call itself runs without
// holding the breaker lock so concurrent fetches are not serialized.
// Only feed-level errors (unreachable, 5xx, malformed payloads) count
// as failures; a 404 for an unknown break passes through untouched.
func (b *FeedBreaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	b.record(err)
	return err
}

func (b *FeedBreaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.Requests++

	switch b.state {
	case breakerClosed:
		return nil

	case breakerOpen:
		if time.Since(b.lastChange) < b.cfg.CoolDown {
			b.stats.Rejected++
			return fmt.Errorf("%w: feed breaker open", ErrFeedUnavailable)
		}
		b.setState(breakerHalfOpen)
		b.probes = 0
		b.successes = 0
		fallthrough

	case breakerHalfOpen:
		if b.probes >= b.cfg.ProbeLimit {
			b.stats.Rejected++
			return fmt.Errorf("%w: feed breaker probing", ErrFeedUnavailable)
		}
		b.probes++
		return nil

	default:
		b.stats.Rejected++
		return fmt.Errorf("%w: feed breaker in unknown state", ErrFeedUnavailable)
	}
}

func (b *FeedBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && isFeedFailure(err) {
		b.stats.Failures++
		b.stats.LastFailure = time.Now()
		b.lastFailure = time.Now()

		switch b.state {
		case breakerClosed:
			b.failures++
			if b.failures >= b.cfg.FailureThreshold {
				b.setState(breakerOpen)
			}
		case breakerHalfOpen:
			// A failed probe reopens immediately.
			b.setState(breakerOpen)
			b.successes = 0
		}
		return
	}

	switch b.state {
	case breakerClosed:
		b.failures = 0
	case breakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.setState(breakerClosed)
			b.failures = 0
			b.successes = 0
			b.probes = 0
		}
	}
}

func (b *FeedBreaker) setState(next breakerState) {
	if b.state == next {
		return
	}

	b.logger.WithFields(logrus.Fields{
		"from":     b.state.String(),
		"to":       next.String(),
		"failures": b.failures,
	}).Info("Marine feed breaker state changed")

	b.state = next
	b.lastChange = time.Now()
	b.stats.StateChanges++
}

// State returns the breaker's current state name.
func (b *FeedBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

// Stats returns a snapshot of the breaker counters.
func (b *FeedBreaker) Stats() FeedBreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Reset forces the breaker closed and clears its counters.
func (b *FeedBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setState(breakerClosed)
	b.failures = 0
	b.successes = 0
	b.probes = 0
}

package core

// connector.go owns establishing and releasing the store connection.
//
// Establishment is retried with exponential backoff: with MaxRetries=3 and a
// one-second unit, attempts happen at t=0, t=1s and t=3s, and the third
// failure is final. Errors wrapped with backoff.Permanent (a malformed DSN,
// an unsupported driver) stop retrying immediately.

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// OpenFunc opens and verifies one connection to the target store.
type OpenFunc func(ctx context.Context) (Store, error)

// DefaultMaxRetries is the default number of connection attempts.
const DefaultMaxRetries = 3

// Connector establishes store connections with retry.
type Connector struct {
	open       OpenFunc
	maxRetries int
	unit       time.Duration
	logger     *slog.Logger

	// timer is swapped in tests to observe backoff delays without sleeping.
	timer backoff.Timer
}

// NewConnector creates a Connector making up to maxRetries attempts
// (at least one) and waiting 1, 2, 4... units between them.
func NewConnector(open OpenFunc, maxRetries int, unit time.Duration, logger *slog.Logger) *Connector {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if unit <= 0 {
		unit = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		open:       open,
		maxRetries: maxRetries,
		unit:       unit,
		logger:     logger,
	}
}

// Connect returns an open Store or a *ConnectionError carrying the last
// underlying cause.
func (c *Connector) Connect(ctx context.Context) (Store, error) {
	attempts := 0
	var store Store

	operation := func() error {
		attempts++
		s, err := c.open(ctx)
		if err != nil {
			return err
		}
		store = s
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("connection attempt failed",
			"attempt", attempts,
			"max_attempts", c.attempts(),
			"retry_in", wait,
			"error", err,
		)
	}

	err := backoff.RetryNotifyWithTimer(operation, backoff.WithContext(c.policy(), ctx), notify, c.timer)
	if err != nil {
		c.logger.Error("connection failed", "attempts", attempts, "error", err)
		return nil, &ConnectionError{Attempts: attempts, Err: err}
	}

	c.logger.Info("connected to database", "attempts", attempts)
	return store, nil
}

// Disconnect releases the store. It is safe to call with a nil store.
func (c *Connector) Disconnect(store Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		c.logger.Warn("error closing database connection", "error", err)
		return
	}
	c.logger.Info("database connection closed")
}

// attempts is the total number of tries; zero retries still means one try.
func (c *Connector) attempts() int {
	if c.maxRetries < 1 {
		return 1
	}
	return c.maxRetries
}

// policy builds the deterministic schedule: unit * 2^attempt, no jitter.
func (c *Connector) policy() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.unit
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	shift := c.attempts()
	if shift > 30 {
		shift = 30
	}
	exp.MaxInterval = c.unit << uint(shift)
	exp.Reset()
	return backoff.WithMaxRetries(exp, uint64(c.attempts()-1))
}

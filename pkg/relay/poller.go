package relay

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// PollConfig holds the schedule for reading a command row until the relay
// actor completes it.
type PollConfig struct {
	// Interval is the wait after the first read (default: 5 seconds).
	Interval time.Duration

	// MaxInterval caps the wait between reads (default: 30 seconds).
	MaxInterval time.Duration

	// Multiplier grows the wait after every read (default: 1.5).
	Multiplier float64

	// Timeout bounds the whole wait (default: 15 minutes).
	Timeout time.Duration
}

// DefaultPollConfig returns the default poll configuration.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    5 * time.Second,
		MaxInterval: 30 * time.Second,
		Multiplier:  1.5,
		Timeout:     900 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultPollConfig.
func (c PollConfig) withDefaults() PollConfig {
	def := DefaultPollConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = def.MaxInterval
	}
	if c.MaxInterval < c.Interval {
		c.MaxInterval = c.Interval
	}
	if c.Multiplier < 1 {
		c.Multiplier = def.Multiplier
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// Completion holds the result columns of a completed row, as written by the
// relay actor.
type Completion struct {
	Duration string
	Status   string
}

// errNotReady signals a row the relay actor has not completed yet.
var errNotReady = errors.New("row not complete")

// Poller waits for the relay actor to fill the result columns of a row.
type Poller struct {
	store  sheet.Store
	config PollConfig
	logger hclog.Logger
}

// NewPoller creates a poller reading from store.
func NewPoller(store sheet.Store, cfg PollConfig, log hclog.Logger) *Poller {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Poller{
		store:  store,
		config: cfg.withDefaults(),
		logger: log.Named("poller"),
	}
}

// Config returns the effective poll configuration.
func (p *Poller) Config() PollConfig {
	return p.config
}

// Await reads the row at index until its status column is non-empty and, when
// requireDuration is set, its duration column too. The first read happens
// immediately.
//
// A *TimeoutError is returned once the poll timeout elapses. When ctx ends
// first its error is returned instead. Retryable store errors are retried
// until the timeout; other store errors end the wait.
func (p *Poller) Await(ctx context.Context, index int, requireDuration bool) (Completion, error) {
	pollCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	var lastErr error
	read := func() (Completion, error) {
		row, err := p.store.Row(pollCtx, index)
		if err != nil {
			if sheet.IsRetryable(err) {
				lastErr = err
				return Completion{}, err
			}
			return Completion{}, backoff.Permanent(err)
		}

		c := Completion{
			Duration: row.Cell(sheet.ColDuration),
			Status:   row.Cell(sheet.ColStatus),
		}
		if c.Status == "" || (requireDuration && c.Duration == "") {
			return Completion{}, errNotReady
		}
		return c, nil
	}

	notify := func(err error, next time.Duration) {
		if errors.Is(err, errNotReady) {
			p.logger.Trace("row not complete", "row", index, "next", next)
			return
		}
		p.logger.Warn("error reading row, will retry",
			"row", index,
			"next", next,
			"error", err,
		)
	}

	c, err := backoff.RetryNotifyWithData(read, backoff.WithContext(p.backOff(), pollCtx), notify)
	if err == nil {
		p.logger.Debug("row complete", "row", index, "status", c.Status)
		return c, nil
	}

	// The caller went away or hit its own deadline.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Completion{}, ctxErr
	}
	if errors.Is(pollCtx.Err(), context.DeadlineExceeded) {
		p.logger.Warn("timed out waiting for row", "row", index, "timeout", p.config.Timeout)
		return Completion{}, &TimeoutError{
			Row:     index,
			Timeout: p.config.Timeout,
			LastErr: lastErr,
		}
	}
	return Completion{}, err
}

// backOff returns a fresh capped exponential schedule. The deadline is
// enforced by the poll context, so MaxElapsedTime is disabled.
func (p *Poller) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.Interval
	b.MaxInterval = p.config.MaxInterval
	b.Multiplier = p.config.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

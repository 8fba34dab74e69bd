// Package relay implements the request side of the relay protocol: it checks
// credentials against the shared store, encodes operations as command rows
// and waits for the relay actor to complete them.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// Config contains the dependencies of a Dispatcher.
type Config struct {
	// Store is the shared store. Required.
	Store sheet.Store

	// Protocol holds the row encoding choices. Zero value means
	// DefaultProtocol().
	Protocol Protocol

	// Poll is the completion poll schedule. Zero fields take defaults.
	Poll PollConfig

	Logger hclog.Logger
}

// Dispatcher turns commands into command rows and pending results.
type Dispatcher struct {
	store     sheet.Store
	validator *Validator
	poller    *Poller
	protocol  Protocol
	logger    hclog.Logger
}

// NewDispatcher creates a dispatcher from cfg.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	if cfg.Protocol == (Protocol{}) {
		cfg.Protocol = DefaultProtocol()
	}

	return &Dispatcher{
		store:     cfg.Store,
		validator: NewValidator(cfg.Store),
		poller:    NewPoller(cfg.Store, cfg.Poll, cfg.Logger),
		protocol:  cfg.Protocol,
		logger:    cfg.Logger.Named("dispatcher"),
	}, nil
}

// Protocol returns the protocol rows are encoded with.
func (d *Dispatcher) Protocol() Protocol {
	return d.protocol
}

// PollConfig returns the effective poll configuration.
func (d *Dispatcher) PollConfig() PollConfig {
	return d.poller.Config()
}

// Dispatch validates cmd and creds, appends the command row and returns the
// pending result. Nothing is appended when validation or authorization
// fails.
//
// Errors are a *ValidationError, ErrUnauthorized or a wrapped store error.
func (d *Dispatcher) Dispatch(ctx context.Context, creds Credentials, cmd Command) (Pending, error) {
	if err := validate(creds, cmd); err != nil {
		return nil, err
	}

	op := cmd.Operation()
	ok, err := d.validator.IsAuthorized(ctx, creds)
	if err != nil {
		return nil, err
	}
	if !ok {
		d.logger.Info("rejected unauthorized request",
			"operation", op,
			"account_sid", creds.AccountSID,
			"phone", creds.PhoneNumber,
		)
		return nil, ErrUnauthorized
	}

	sid := NewSID(op.SIDPrefix())
	if uc, ok := cmd.(UpdateCall); ok {
		sid = uc.SID
	}

	row, err := d.store.Append(ctx, cmd.Encode(d.protocol, creds))
	if err != nil {
		return nil, fmt.Errorf("error appending command row: %w", err)
	}

	d.logger.Info("appended command row",
		"operation", op,
		"row", row,
		"sid", sid,
	)
	return newPending(op, sid, row, d.poller), nil
}

// Execute dispatches cmd and waits for its result.
func (d *Dispatcher) Execute(ctx context.Context, creds Credentials, cmd Command) (*Result, error) {
	p, err := d.Dispatch(ctx, creds, cmd)
	if err != nil {
		return nil, err
	}

	res, err := p.Await(ctx)
	if err != nil {
		d.logger.Warn("command did not complete",
			"operation", cmd.Operation(),
			"row", p.Row(),
			"sid", p.SID(),
			"error", err,
		)
		return nil, err
	}
	return res, nil
}

// validate checks creds and cmd together so that every missing field is
// reported at once.
func validate(creds Credentials, cmd Command) error {
	var fields []string
	for _, err := range []error{creds.Validate(), cmd.Validate()} {
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = append(fields, verr.Fields...)
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	return &ValidationError{Fields: fields}
}

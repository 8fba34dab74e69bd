package relay

import (
	"context"
	"strings"
)

// Result is the outcome of a completed operation as returned to callers.
type Result struct {
	SID string `json:"sid"`

	// Duration is the raw duration column. It is set for calls only.
	Duration *string `json:"duration,omitempty"`

	// Status is the status column, lower-cased.
	Status string `json:"status"`
}

// Pending is an operation whose row has been appended and is waiting for the
// relay actor. The variants are *Message, *Call, *SMSForward and
// *InboxCheck.
type Pending interface {
	// SID returns the identifier handed back to the caller.
	SID() string

	// Row returns the 1-based index of the command row.
	Row() int

	// Await blocks until the relay actor completes the row.
	Await(ctx context.Context) (*Result, error)

	isPending()
}

// Compile-time interface checks
var (
	_ Pending = (*Message)(nil)
	_ Pending = (*Call)(nil)
	_ Pending = (*SMSForward)(nil)
	_ Pending = (*InboxCheck)(nil)
)

type request struct {
	sid    string
	row    int
	poller *Poller
}

func (r *request) SID() string { return r.sid }
func (r *request) Row() int    { return r.row }
func (*request) isPending()    {}

// awaitStatus waits for the status column only.
func (r *request) awaitStatus(ctx context.Context) (*Result, error) {
	c, err := r.poller.Await(ctx, r.row, false)
	if err != nil {
		return nil, err
	}
	return &Result{
		SID:    r.sid,
		Status: strings.ToLower(c.Status),
	}, nil
}

// Message is a pending text message.
type Message struct {
	request
}

func (m *Message) Await(ctx context.Context) (*Result, error) {
	return m.awaitStatus(ctx)
}

// Call is a pending call operation: a direct call, a merge or a hangup. It
// waits for both the duration and status columns.
type Call struct {
	request
}

func (c *Call) Await(ctx context.Context) (*Result, error) {
	comp, err := c.poller.Await(ctx, c.row, true)
	if err != nil {
		return nil, err
	}
	duration := comp.Duration
	return &Result{
		SID:      c.sid,
		Duration: &duration,
		Status:   strings.ToLower(comp.Status),
	}, nil
}

// SMSForward is a pending start or stop of SMS forwarding.
type SMSForward struct {
	request
}

func (f *SMSForward) Await(ctx context.Context) (*Result, error) {
	return f.awaitStatus(ctx)
}

// InboxCheck is a pending inbox check.
type InboxCheck struct {
	request
}

func (i *InboxCheck) Await(ctx context.Context) (*Result, error) {
	return i.awaitStatus(ctx)
}

func newPending(op Operation, sid string, row int, poller *Poller) Pending {
	r := request{sid: sid, row: row, poller: poller}
	switch op {
	case OpPlaceCall, OpMergeCall, OpUpdateCall:
		return &Call{r}
	case OpForwardSMS, OpStopForwardSMS:
		return &SMSForward{r}
	case OpCheckInbox:
		return &InboxCheck{r}
	default:
		return &Message{r}
	}
}

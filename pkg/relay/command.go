package relay

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// Operation identifies what the relay actor is asked to do.
type Operation string

const (
	OpSendMessage    Operation = "send_message"
	OpPlaceCall      Operation = "place_call"
	OpMergeCall      Operation = "merge_call"
	OpUpdateCall     Operation = "update_call"
	OpForwardSMS     Operation = "sms_forward"
	OpStopForwardSMS Operation = "sms_forward_stop"
	OpCheckInbox     Operation = "check_inbox"
)

// IsCall reports whether op belongs to the call family. Call operations get
// CA_ sids and wait for both the duration and status columns.
func (op Operation) IsCall() bool {
	switch op {
	case OpPlaceCall, OpMergeCall, OpUpdateCall:
		return true
	}
	return false
}

// SIDPrefix returns the sid prefix for op.
func (op Operation) SIDPrefix() string {
	if op.IsCall() {
		return CallSIDPrefix
	}
	return MessageSIDPrefix
}

// Purpose tags written to column F.
const (
	PurposeSendText             = "send_text"
	PurposeDirectCall           = "direct_call"
	PurposeDirectCallAutoHangup = "direct_call_auto_hangup_True"
	PurposeMergeCall            = "merge_call"
	PurposeSMSForward           = "sms_forward"
	PurposeSMSForwardStop       = "sms_forward_stop"
	PurposeCheckInbox           = "check_inbox"

	// PurposeHangupCall is the dedicated hangup tag for relay actors that
	// support it. See Protocol.HangupPurpose.
	PurposeHangupCall = "hangup_call"
)

// Flag values written to column G.
const (
	FlagTrue  = "True"
	FlagFalse = "False"
)

// Protocol holds the encoding choices the relay actor has to agree with.
type Protocol struct {
	// HangupPurpose is the purpose tag for UpdateCall rows. Existing relay
	// actors only understand PurposeDirectCallAutoHangup.
	HangupPurpose string
}

// DefaultProtocol returns the protocol existing relay actors understand.
func DefaultProtocol() Protocol {
	return Protocol{
		HangupPurpose: PurposeDirectCallAutoHangup,
	}
}

// Command is one relay operation with its parameters. Implementations are a
// closed set defined in this package.
type Command interface {
	// Operation returns the operation the command performs.
	Operation() Operation

	// Validate returns a *ValidationError when a required field is empty.
	Validate() error

	// Encode returns the command row for creds. Encoding is deterministic.
	Encode(p Protocol, creds Credentials) sheet.Row
}

// Compile-time interface checks
var (
	_ Command = SendMessage{}
	_ Command = PlaceCall{}
	_ Command = MergeCall{}
	_ Command = UpdateCall{}
	_ Command = ForwardSMS{}
	_ Command = StopForwardSMS{}
	_ Command = CheckInbox{}
)

// SendMessage asks the relay actor to send a text.
type SendMessage struct {
	Body string `json:"body"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (SendMessage) Operation() Operation { return OpSendMessage }

func (c SendMessage) Validate() error {
	return requireFields(validation.ValidateStruct(&c,
		validation.Field(&c.Body, validation.Required),
		validation.Field(&c.From, validation.Required),
		validation.Field(&c.To, validation.Required),
	))
}

func (c SendMessage) Encode(_ Protocol, creds Credentials) sheet.Row {
	r := newRow(creds, c.From, c.To, PurposeSendText)
	r[sheet.ColBody] = c.Body
	return r
}

// PlaceCall asks the relay actor to dial To from From.
type PlaceCall struct {
	From       string `json:"from"`
	To         string `json:"to"`
	AutoHangup bool   `json:"auto_hang"`
}

func (PlaceCall) Operation() Operation { return OpPlaceCall }

func (c PlaceCall) Validate() error {
	return requireFields(validation.ValidateStruct(&c,
		validation.Field(&c.From, validation.Required),
		validation.Field(&c.To, validation.Required),
	))
}

func (c PlaceCall) Encode(_ Protocol, creds Credentials) sheet.Row {
	if c.AutoHangup {
		r := newRow(creds, c.From, c.To, PurposeDirectCallAutoHangup)
		r[sheet.ColFlag] = FlagTrue
		return r
	}
	return newRow(creds, c.From, c.To, PurposeDirectCall)
}

// MergeCall asks the relay actor to bridge Phone1 and Phone2.
type MergeCall struct {
	From   string `json:"from"`
	Phone1 string `json:"phone_1"`
	Phone2 string `json:"phone_2"`
}

func (MergeCall) Operation() Operation { return OpMergeCall }

func (c MergeCall) Validate() error {
	return requireFields(validation.ValidateStruct(&c,
		validation.Field(&c.Phone1, validation.Required),
		validation.Field(&c.Phone2, validation.Required),
		validation.Field(&c.From, validation.Required),
	))
}

func (c MergeCall) Encode(_ Protocol, creds Credentials) sheet.Row {
	r := newRow(creds, c.From, c.Phone1, PurposeMergeCall)
	r[sheet.ColSecondary] = c.Phone2
	return r
}

// UpdateCall asks the relay actor to change the state of a call, in practice
// to hang it up. The requested status travels only in the response.
type UpdateCall struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func (UpdateCall) Operation() Operation { return OpUpdateCall }

func (c UpdateCall) Validate() error {
	return requireFields(validation.ValidateStruct(&c,
		validation.Field(&c.SID, validation.Required),
		validation.Field(&c.Status, validation.Required),
	))
}

func (c UpdateCall) Encode(p Protocol, creds Credentials) sheet.Row {
	purpose := p.HangupPurpose
	if purpose == "" {
		purpose = PurposeDirectCallAutoHangup
	}
	r := newRow(creds, c.From, c.To, purpose)
	r[sheet.ColFlag] = FlagTrue
	return r
}

// ForwardSMS asks the relay actor to forward incoming SMS for ToNumber to
// ToNumber2.
type ForwardSMS struct {
	From      string `json:"from"`
	ToNumber  string `json:"to_number"`
	ToNumber2 string `json:"to_number2"`
}

func (ForwardSMS) Operation() Operation { return OpForwardSMS }

func (c ForwardSMS) Validate() error {
	return validateForward(c.From, c.ToNumber, c.ToNumber2)
}

func (c ForwardSMS) Encode(_ Protocol, creds Credentials) sheet.Row {
	r := newRow(creds, c.From, c.ToNumber, PurposeSMSForward)
	r[sheet.ColSecondary] = c.ToNumber2
	r[sheet.ColFlag] = FlagFalse
	return r
}

// StopForwardSMS cancels a ForwardSMS.
type StopForwardSMS struct {
	From      string `json:"from"`
	ToNumber  string `json:"to_number"`
	ToNumber2 string `json:"to_number2"`
}

func (StopForwardSMS) Operation() Operation { return OpStopForwardSMS }

func (c StopForwardSMS) Validate() error {
	return validateForward(c.From, c.ToNumber, c.ToNumber2)
}

func (c StopForwardSMS) Encode(_ Protocol, creds Credentials) sheet.Row {
	r := newRow(creds, c.From, c.ToNumber, PurposeSMSForwardStop)
	r[sheet.ColSecondary] = c.ToNumber2
	r[sheet.ColFlag] = FlagTrue
	return r
}

// CheckInbox asks the relay actor to report on the inbox of From.
type CheckInbox struct {
	From string `json:"from"`
}

func (CheckInbox) Operation() Operation { return OpCheckInbox }

func (c CheckInbox) Validate() error {
	return requireFields(validation.ValidateStruct(&c,
		validation.Field(&c.From, validation.Required),
	))
}

func (c CheckInbox) Encode(_ Protocol, creds Credentials) sheet.Row {
	return newRow(creds, c.From, "", PurposeCheckInbox)
}

func validateForward(from, toNumber, toNumber2 string) error {
	fields := struct {
		From      string `json:"from"`
		ToNumber  string `json:"to_number"`
		ToNumber2 string `json:"to_number2"`
	}{from, toNumber, toNumber2}

	return requireFields(validation.ValidateStruct(&fields,
		validation.Field(&fields.ToNumber, validation.Required),
		validation.Field(&fields.ToNumber2, validation.Required),
		validation.Field(&fields.From, validation.Required),
	))
}

// newRow returns a command row with the shared columns filled in. Result
// columns I and J are always left empty for the relay actor.
func newRow(creds Credentials, from, to, purpose string) sheet.Row {
	r := sheet.NewCommandRow()
	r[sheet.ColAccountSID] = creds.AccountSID
	r[sheet.ColAuthToken] = creds.AuthToken
	r[sheet.ColFrom] = from
	r[sheet.ColTo] = to
	r[sheet.ColPurpose] = purpose
	return r
}

// requireFields turns ozzo validation errors into a *ValidationError listing
// the offending fields in a stable order.
func requireFields(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return &ValidationError{Fields: fields}
}

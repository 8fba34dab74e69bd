package relay

import (
	"context"
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// DefaultPhone is the phone value used when a request omits phone_number. It
// matches credential rows that carry no assigned phone.
const DefaultPhone = "default"

// Credentials identify the caller of an operation.
type Credentials struct {
	AccountSID  string `json:"account_sid"`
	AuthToken   string `json:"auth_token"`
	PhoneNumber string `json:"phone_number"`
}

// UnmarshalJSON decodes credentials from a request body. PhoneNumber is
// DefaultPhone when the key is absent; an explicit empty string is kept.
func (c *Credentials) UnmarshalJSON(data []byte) error {
	type plain Credentials
	v := plain{PhoneNumber: DefaultPhone}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Credentials(v)
	return nil
}

// Validator checks credentials against the declaration rows of a store.
type Validator struct {
	store sheet.Store
}

// NewValidator returns a Validator reading from store.
func NewValidator(store sheet.Store) *Validator {
	return &Validator{store: store}
}

// IsAuthorized reports whether creds are declared in the store.
//
// A declaration row has the account and secret in columns A and B and every
// column from C through J empty. The first declaration for the pair decides:
// when it assigns a phone in column K the request must name that phone,
// otherwise the request must name DefaultPhone. The phone is compared as given. Command rows never match because
// they always carry a purpose in column F.
func (v *Validator) IsAuthorized(ctx context.Context, creds Credentials) (bool, error) {
	rows, err := v.store.Rows(ctx)
	if err != nil {
		return false, fmt.Errorf("error reading credential rows: %w", err)
	}

	phone := creds.PhoneNumber
	for _, row := range rows {
		if !IsCredentialRow(row, creds.AccountSID, creds.AuthToken) {
			continue
		}
		if assigned := row.Cell(sheet.ColAssignedPhone); assigned != "" {
			return assigned == phone, nil
		}
		return phone == DefaultPhone, nil
	}
	return false, nil
}

// IsCredentialRow reports whether row declares the given account and secret.
func IsCredentialRow(row sheet.Row, accountSID, authToken string) bool {
	return row.Cell(sheet.ColAccountSID) == accountSID &&
		row.Cell(sheet.ColAuthToken) == authToken &&
		row.BlankBetween(sheet.ColFrom, sheet.ColStatus)
}

// Validate returns a *ValidationError when the account or secret is empty.
func (c Credentials) Validate() error {
	return requireFields(validation.ValidateStruct(&c,
		validation.Field(&c.AccountSID, validation.Required),
		validation.Field(&c.AuthToken, validation.Required),
	))
}

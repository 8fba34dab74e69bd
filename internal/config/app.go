package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"
)

// AppConfigEnv is the environment variable holding the store credentials and
// spreadsheet location as JSON.
const AppConfigEnv = "APP_CONFIG"

// ConfigurationError reports configuration the process cannot start with.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Msg)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AppConfig is the decoded APP_CONFIG document.
type AppConfig struct {
	// SpreadsheetURL locates the shared spreadsheet.
	SpreadsheetURL string

	// ServiceAccount holds the checked service account fields.
	ServiceAccount ServiceAccount

	// CredentialsJSON is the service account key, re-encoded with real
	// newlines in the private key.
	CredentialsJSON []byte
}

// ServiceAccount is the subset of a Google service account key that must be
// present.
type ServiceAccount struct {
	Type        string `mapstructure:"type"`
	ProjectID   string `mapstructure:"project_id"`
	ClientEmail string `mapstructure:"client_email"`
	PrivateKey  string `mapstructure:"private_key"`
}

func (s ServiceAccount) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required, validation.In("service_account")),
		validation.Field(&s.ClientEmail, validation.Required),
		validation.Field(&s.PrivateKey, validation.Required),
	)
}

// ParseAppConfig decodes an APP_CONFIG value of the form
// {"credentials": {...service account key...}, "spreadsheet_url": "..."}.
// Literal "\n" sequences in the private key are turned into newlines.
func ParseAppConfig(value string) (*AppConfig, error) {
	if strings.TrimSpace(value) == "" {
		return nil, &ConfigurationError{Msg: AppConfigEnv + " environment variable not set"}
	}

	var doc struct {
		Credentials    map[string]interface{} `json:"credentials"`
		SpreadsheetURL string                 `json:"spreadsheet_url"`
	}
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		return nil, &ConfigurationError{Msg: "invalid " + AppConfigEnv + " JSON", Err: err}
	}
	if len(doc.Credentials) == 0 || doc.SpreadsheetURL == "" {
		return nil, &ConfigurationError{Msg: "missing credentials or spreadsheet_url in " + AppConfigEnv}
	}

	var sa ServiceAccount
	if err := mapstructure.Decode(doc.Credentials, &sa); err != nil {
		return nil, &ConfigurationError{Msg: "invalid service account credentials", Err: err}
	}
	if strings.Contains(sa.PrivateKey, `\n`) {
		sa.PrivateKey = strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")
		doc.Credentials["private_key"] = sa.PrivateKey
	}
	if err := sa.Validate(); err != nil {
		return nil, &ConfigurationError{Msg: "invalid service account credentials", Err: err}
	}

	credsJSON, err := json.Marshal(doc.Credentials)
	if err != nil {
		return nil, &ConfigurationError{Msg: "error encoding service account credentials", Err: err}
	}

	return &AppConfig{
		SpreadsheetURL:  doc.SpreadsheetURL,
		ServiceAccount:  sa,
		CredentialsJSON: credsJSON,
	}, nil
}

func defaultGetenv(key string) string {
	return os.Getenv(key)
}

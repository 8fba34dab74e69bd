package config

import (
	"fmt"
	"net"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/switchboard/pkg/relay"
)

const (
	// DefaultPort is the listen port when neither the config file nor the
	// PORT environment variable sets one.
	DefaultPort = "5000"

	// DefaultLocalPath is the SQLite file used by the local store.
	DefaultLocalPath = "switchboard.db"

	StoreProviderGoogle = "google"
	StoreProviderLocal  = "local"
)

// Config contains the switchboard configuration.
type Config struct {
	// LogLevel is the level of logs to emit.
	LogLevel string `hcl:"log_level,optional"`

	// Server configures the HTTP API.
	Server *Server `hcl:"server,block"`

	// Store selects the backing store.
	Store *Store `hcl:"store,block"`

	// Poll configures how long and how often command rows are read while
	// waiting for the relay actor.
	Poll *Poll `hcl:"poll,block"`

	// Protocol configures row encoding choices.
	Protocol *Protocol `hcl:"protocol,block"`

	// App is read from the APP_CONFIG environment variable. It is required
	// for the google store.
	App *AppConfig
}

// Server configures the HTTP API.
type Server struct {
	// Address is the address to bind to for listening.
	Address string `hcl:"address,optional"`
}

// Store selects the backing store.
type Store struct {
	// Provider is "google" or "local".
	Provider string `hcl:"provider,optional"`

	// LocalPath is the SQLite database path for the local provider.
	LocalPath string `hcl:"local_path,optional"`

	// Worksheet is the worksheet title for the google provider. Empty
	// selects the first worksheet.
	Worksheet string `hcl:"worksheet,optional"`
}

// Poll configures the completion poll schedule. Durations use Go duration
// syntax, e.g. "5s".
type Poll struct {
	Interval    string  `hcl:"interval,optional"`
	MaxInterval string  `hcl:"max_interval,optional"`
	Multiplier  float64 `hcl:"multiplier,optional"`
	Timeout     string  `hcl:"timeout,optional"`
}

// Protocol configures row encoding choices.
type Protocol struct {
	// HangupPurpose is the purpose tag written for update-call rows.
	HangupPurpose string `hcl:"hangup_purpose,optional"`
}

// Options control where configuration is read from.
type Options struct {
	// Fs is the filesystem the config file is read from. Defaults to the OS
	// filesystem.
	Fs afero.Fs

	// Path is the HCL config file. Empty means no file.
	Path string

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewConfig loads the configuration described by opts, applies defaults and
// validates the result.
func NewConfig(opts Options) (*Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Getenv == nil {
		opts.Getenv = defaultGetenv
	}

	cfg := &Config{}
	if opts.Path != "" {
		src, err := afero.ReadFile(opts.Fs, opts.Path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := hclsimple.Decode(opts.Path, src, nil, cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	cfg.setDefaults(opts.Getenv)

	if cfg.Store.Provider == StoreProviderGoogle {
		app, err := ParseAppConfig(opts.Getenv(AppConfigEnv))
		if err != nil {
			return nil, err
		}
		cfg.App = app
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults fills unset values. PORT is honored only when no address is
// configured.
func (c *Config) setDefaults(getenv func(string) string) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Address == "" {
		port := getenv("PORT")
		if port == "" {
			port = DefaultPort
		}
		c.Server.Address = net.JoinHostPort("0.0.0.0", port)
	}

	if c.Store == nil {
		c.Store = &Store{}
	}
	if c.Store.Provider == "" {
		c.Store.Provider = StoreProviderGoogle
	}
	if c.Store.LocalPath == "" {
		c.Store.LocalPath = DefaultLocalPath
	}

	def := relay.DefaultPollConfig()
	if c.Poll == nil {
		c.Poll = &Poll{}
	}
	if c.Poll.Interval == "" {
		c.Poll.Interval = def.Interval.String()
	}
	if c.Poll.MaxInterval == "" {
		c.Poll.MaxInterval = def.MaxInterval.String()
	}
	if c.Poll.Multiplier == 0 {
		c.Poll.Multiplier = def.Multiplier
	}
	if c.Poll.Timeout == "" {
		c.Poll.Timeout = def.Timeout.String()
	}

	if c.Protocol == nil {
		c.Protocol = &Protocol{}
	}
	if c.Protocol.HangupPurpose == "" {
		c.Protocol.HangupPurpose = relay.DefaultProtocol().HangupPurpose
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("trace", "debug", "info", "warn", "error")),
	); err != nil {
		result = multierror.Append(result, err)
	}

	if err := validation.ValidateStruct(c.Store,
		validation.Field(&c.Store.Provider, validation.Required,
			validation.In(StoreProviderGoogle, StoreProviderLocal)),
		validation.Field(&c.Store.LocalPath,
			validation.When(c.Store.Provider == StoreProviderLocal, validation.Required)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("store: %w", err))
	}

	if err := validation.ValidateStruct(c.Poll,
		validation.Field(&c.Poll.Interval, validation.Required, validation.By(isPositiveDuration)),
		validation.Field(&c.Poll.MaxInterval, validation.Required, validation.By(isPositiveDuration)),
		validation.Field(&c.Poll.Timeout, validation.Required, validation.By(isPositiveDuration)),
		validation.Field(&c.Poll.Multiplier, validation.Min(1.0)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("poll: %w", err))
	}

	if err := validation.ValidateStruct(c.Protocol,
		validation.Field(&c.Protocol.HangupPurpose, validation.Required,
			validation.In(relay.PurposeDirectCallAutoHangup, relay.PurposeHangupCall)),
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("protocol: %w", err))
	}

	if c.Store.Provider == StoreProviderGoogle && c.App == nil {
		result = multierror.Append(result,
			fmt.Errorf("%s is required for the %s store", AppConfigEnv, StoreProviderGoogle))
	}

	return result.ErrorOrNil()
}

// PollConfig returns the relay poll schedule. Validate must have succeeded.
func (c *Config) PollConfig() relay.PollConfig {
	interval, _ := time.ParseDuration(c.Poll.Interval)
	maxInterval, _ := time.ParseDuration(c.Poll.MaxInterval)
	timeout, _ := time.ParseDuration(c.Poll.Timeout)

	return relay.PollConfig{
		Interval:    interval,
		MaxInterval: maxInterval,
		Multiplier:  c.Poll.Multiplier,
		Timeout:     timeout,
	}
}

// RelayProtocol returns the relay row encoding choices.
func (c *Config) RelayProtocol() relay.Protocol {
	return relay.Protocol{
		HangupPurpose: c.Protocol.HangupPurpose,
	}
}

func isPositiveDuration(value interface{}) error {
	s, _ := value.(string)
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration such as \"5s\"")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

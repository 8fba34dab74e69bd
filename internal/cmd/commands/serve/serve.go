package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/switchboard/internal/api"
	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
	"github.com/hashicorp-forge/switchboard/internal/config"
	"github.com/hashicorp-forge/switchboard/internal/server"
	"github.com/hashicorp-forge/switchboard/pkg/relay"
	"github.com/hashicorp-forge/switchboard/pkg/sheet"
	"github.com/hashicorp-forge/switchboard/pkg/sheet/adapters/google"
	"github.com/hashicorp-forge/switchboard/pkg/sheet/adapters/local"
)

// shutdownTimeout bounds how long in-flight requests may take to finish once
// a shutdown signal arrives.
const shutdownTimeout = 30 * time.Second

type Command struct {
	*base.Command

	flagConfig string
	flagAddr   string
}

func (c *Command) Synopsis() string {
	return "Run the switchboard HTTP API"
}

func (c *Command) Help() string {
	return `Usage: switchboard serve [options]

  Run the switchboard HTTP API. Requests are written as command rows to the
  shared store and answered once the relay actor completes them.

  Without a config file the Google Sheets store is used, configured by the
  APP_CONFIG environment variable.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", os.Getenv("SWITCHBOARD_CONFIG"),
		"[SWITCHBOARD_CONFIG] Path to the switchboard config file",
	)
	f.StringVar(
		&c.flagAddr, "addr", "",
		"Address to listen on, overriding the config file and PORT",
	)

	return f
}

func (c *Command) Run(args []string) int {
	log, ui := c.Log, c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.NewConfig(config.Options{
		Fs:   afero.NewOsFs(),
		Path: c.flagConfig,
	})
	if err != nil {
		ui.Error(fmt.Sprintf("error parsing config: %v", err))
		return 1
	}
	if c.flagAddr != "" {
		cfg.Server.Address = c.flagAddr
	}
	log.SetLevel(hclog.LevelFromString(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		ui.Error(fmt.Sprintf("error opening store: %v", err))
		return 1
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("error closing store", "error", err)
		}
	}()

	dispatcher, err := relay.NewDispatcher(relay.Config{
		Store:    store,
		Protocol: cfg.RelayProtocol(),
		Poll:     cfg.PollConfig(),
		Logger:   log,
	})
	if err != nil {
		ui.Error(fmt.Sprintf("error creating dispatcher: %v", err))
		return 1
	}

	srv := server.Server{
		Config:     cfg,
		Dispatcher: dispatcher,
		Store:      store,
		Logger:     log.Named("api"),
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "address", cfg.Server.Address, "store", cfg.Store.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			ui.Error(fmt.Sprintf("error starting listener: %v", err))
			return 1
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		ui.Error(fmt.Sprintf("error shutting down server: %v", err))
		return 1
	}

	return 0
}

// openStore returns the store selected by cfg and a function releasing it.
func openStore(
	ctx context.Context,
	cfg *config.Config,
	log hclog.Logger,
) (sheet.Store, func() error, error) {
	switch cfg.Store.Provider {
	case config.StoreProviderLocal:
		s, err := local.Open(cfg.Store.LocalPath, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.StoreProviderGoogle:
		s, err := google.New(ctx, google.Config{
			SpreadsheetURL:  cfg.App.SpreadsheetURL,
			Worksheet:       cfg.Store.Worksheet,
			CredentialsJSON: cfg.App.CredentialsJSON,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store provider %q", cfg.Store.Provider)
	}
}

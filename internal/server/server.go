package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/switchboard/internal/config"
	"github.com/hashicorp-forge/switchboard/pkg/relay"
	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// Server contains the server configuration.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// Dispatcher appends command rows and waits for their results.
	Dispatcher *relay.Dispatcher

	// Store is the shared store the dispatcher writes to.
	Store sheet.Store

	// Logger is the logger for the server.
	Logger hclog.Logger
}

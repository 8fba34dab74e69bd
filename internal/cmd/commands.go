package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
	"github.com/hashicorp-forge/switchboard/internal/cmd/commands/operator"
	"github.com/hashicorp-forge/switchboard/internal/cmd/commands/serve"
	"github.com/hashicorp-forge/switchboard/internal/cmd/commands/version"
)

// Commands is the mapping of all available switchboard commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
		"operator": func() (cli.Command, error) {
			return &operator.Command{Command: b}, nil
		},
		"operator add-credential": func() (cli.Command, error) {
			return &operator.AddCredentialCommand{Command: b}, nil
		},
		"operator complete-row": func() (cli.Command, error) {
			return &operator.CompleteRowCommand{Command: b}, nil
		},
	}
}

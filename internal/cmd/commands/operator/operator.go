package operator

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Perform operator-specific tasks"
}

func (c *Command) Help() string {
	return `Usage: switchboard operator <subcommand> [options] [args]

  This command groups subcommands for operators working against the local
  store. Together they let a developer play the relay actor without a
  spreadsheet.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

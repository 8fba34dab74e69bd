package version

import (
	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
	"github.com/hashicorp-forge/switchboard/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of switchboard"
}

func (c *Command) Help() string {
	return `Usage: switchboard version

  Print the version of switchboard.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("switchboard " + version.String())
	return 0
}

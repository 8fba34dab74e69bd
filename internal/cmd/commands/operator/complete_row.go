package operator

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
	"github.com/hashicorp-forge/switchboard/internal/config"
	"github.com/hashicorp-forge/switchboard/pkg/sheet"
	"github.com/hashicorp-forge/switchboard/pkg/sheet/adapters/local"
)

type CompleteRowCommand struct {
	*base.Command

	flagDB       string
	flagRow      int
	flagStatus   string
	flagDuration string
}

func (c *CompleteRowCommand) Synopsis() string {
	return "Write a result to a command row in the local store"
}

func (c *CompleteRowCommand) Help() string {
	return `Usage: switchboard operator complete-row -row=3 -status=Delivered [-duration=12]

  This command fills the result columns of a command row in the local store,
  as the relay actor would. Pending requests waiting on the row complete on
  their next poll. Calls also need a duration.` +
		c.Flags().Help()
}

func (c *CompleteRowCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("complete-row", flag.ContinueOnError))

	f.StringVar(
		&c.flagDB, "db", config.DefaultLocalPath, "Path to the local store database",
	)
	f.IntVar(
		&c.flagRow, "row", 0, "(Required) 1-based index of the command row",
	)
	f.StringVar(
		&c.flagStatus, "status", "", "(Required) Result status",
	)
	f.StringVar(
		&c.flagDuration, "duration", "", "Result duration, for calls",
	)

	return f
}

func (c *CompleteRowCommand) Run(args []string) int {
	log, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagRow < 1 {
		ui.Error("row must be at least 1")
		return 1
	}
	if c.flagStatus == "" {
		ui.Error("status flag is required")
		return 1
	}

	store, err := local.Open(c.flagDB, log)
	if err != nil {
		ui.Error(fmt.Sprintf("error opening local store: %v", err))
		return 1
	}
	defer store.Close()

	ctx := context.Background()
	row, err := store.Row(ctx, c.flagRow)
	if err != nil {
		ui.Error(fmt.Sprintf("error reading row: %v", err))
		return 1
	}
	if row.Cell(sheet.ColPurpose) == "" {
		ui.Error(fmt.Sprintf("row %d is not a command row", c.flagRow))
		return 1
	}

	if err := store.SetResult(ctx, c.flagRow, c.flagDuration, c.flagStatus); err != nil {
		ui.Error(fmt.Sprintf("error writing result: %v", err))
		return 1
	}

	ui.Info(fmt.Sprintf("Completed row %d (%s) with status %s",
		c.flagRow, row.Cell(sheet.ColPurpose), c.flagStatus))
	return 0
}

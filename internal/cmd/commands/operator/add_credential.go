package operator

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
	"github.com/hashicorp-forge/switchboard/internal/config"
	"github.com/hashicorp-forge/switchboard/pkg/relay"
	"github.com/hashicorp-forge/switchboard/pkg/sheet"
	"github.com/hashicorp-forge/switchboard/pkg/sheet/adapters/local"
)

type AddCredentialCommand struct {
	*base.Command

	flagDB      string
	flagAccount string
	flagToken   string
	flagPhone   string
}

func (c *AddCredentialCommand) Synopsis() string {
	return "Declare an account in the local store"
}

func (c *AddCredentialCommand) Help() string {
	return `Usage: switchboard operator add-credential -account=AC1 -token=secret [-phone=+15550100]

  This command appends a credential declaration row to the local store. An
  account declared without a phone may only be used with phone "default".` +
		c.Flags().Help()
}

func (c *AddCredentialCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("add-credential", flag.ContinueOnError))

	f.StringVar(
		&c.flagDB, "db", config.DefaultLocalPath, "Path to the local store database",
	)
	f.StringVar(
		&c.flagAccount, "account", "", "(Required) Account identifier",
	)
	f.StringVar(
		&c.flagToken, "token", "", "(Required) Account secret",
	)
	f.StringVar(
		&c.flagPhone, "phone", "", "Phone number assigned to the account",
	)

	return f
}

func (c *AddCredentialCommand) Run(args []string) int {
	log, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if c.flagAccount == "" || c.flagToken == "" {
		ui.Error("account and token flags are required")
		return 1
	}
	if c.flagPhone == relay.DefaultPhone {
		// An empty assignment is how "default" is declared.
		c.flagPhone = ""
	}

	store, err := local.Open(c.flagDB, log)
	if err != nil {
		ui.Error(fmt.Sprintf("error opening local store: %v", err))
		return 1
	}
	defer store.Close()

	row := make(sheet.Row, sheet.Width)
	row[sheet.ColAccountSID] = c.flagAccount
	row[sheet.ColAuthToken] = c.flagToken
	row[sheet.ColAssignedPhone] = c.flagPhone

	idx, err := store.Append(context.Background(), row)
	if err != nil {
		ui.Error(fmt.Sprintf("error appending credential row: %v", err))
		return 1
	}

	phone := c.flagPhone
	if phone == "" {
		phone = relay.DefaultPhone
	}
	ui.Info(fmt.Sprintf("Declared account %s for phone %s at row %d", c.flagAccount, phone, idx))
	return 0
}

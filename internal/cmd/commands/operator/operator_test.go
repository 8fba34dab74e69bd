package operator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/switchboard/internal/cmd/base"
	"github.com/hashicorp-forge/switchboard/pkg/sheet"
	"github.com/hashicorp-forge/switchboard/pkg/sheet/adapters/local"
)

func newBase() (*base.Command, *cli.MockUi) {
	ui := cli.NewMockUi()
	return base.NewCommand(hclog.NewNullLogger(), ui), ui
}

func TestAddCredential(t *testing.T) {
	db := filepath.Join(t.TempDir(), "relay.db")

	b, ui := newBase()
	cmd := &AddCredentialCommand{Command: b}
	code := cmd.Run([]string{"-db", db, "-account", "AC1", "-token", "tok1", "-phone", "+1555"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "Declared account AC1 for phone +1555 at row 1")

	b, ui = newBase()
	cmd = &AddCredentialCommand{Command: b}
	code = cmd.Run([]string{"-db", db, "-account", "AC2", "-token", "tok2", "-phone", "default"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	store, err := local.Open(db, nil)
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "+1555", rows[0].Cell(sheet.ColAssignedPhone))
	assert.True(t, rows[1].BlankBetween(sheet.ColFrom, sheet.ColAssignedPhone))
}

func TestAddCredential_RequiresFlags(t *testing.T) {
	b, ui := newBase()
	cmd := &AddCredentialCommand{Command: b}

	code := cmd.Run([]string{"-db", filepath.Join(t.TempDir(), "relay.db"), "-account", "AC1"})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "required")
}

func TestCompleteRow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "relay.db")

	store, err := local.Open(db, nil)
	require.NoError(t, err)
	idx, err := store.Append(context.Background(),
		sheet.Row{"AC1", "tok1", "+1", "+2", "", "direct_call", "", "", "", ""})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	b, ui := newBase()
	cmd := &CompleteRowCommand{Command: b}
	code := cmd.Run([]string{"-db", db, "-row", "1", "-status", "Completed", "-duration", "9"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	store, err = local.Open(db, nil)
	require.NoError(t, err)
	defer store.Close()

	row, err := store.Row(context.Background(), idx)
	require.NoError(t, err)
	assert.Equal(t, "9", row.Cell(sheet.ColDuration))
	assert.Equal(t, "Completed", row.Cell(sheet.ColStatus))
}

func TestCompleteRow_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "relay.db")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no row",
			args:    []string{"-db", db, "-status", "ok"},
			wantErr: "row must be at least 1",
		},
		{
			name:    "no status",
			args:    []string{"-db", db, "-row", "1"},
			wantErr: "status flag is required",
		},
		{
			name:    "missing row",
			args:    []string{"-db", db, "-row", "5", "-status", "ok"},
			wantErr: "row 5 is not a command row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ui := newBase()
			cmd := &CompleteRowCommand{Command: b}

			assert.Equal(t, 1, cmd.Run(tt.args))
			assert.Contains(t, ui.ErrorWriter.String(), tt.wantErr)
		})
	}
}

package local

import (
	"context"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// setupTestStore creates an in-memory SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	s, err := Open(":memory:", hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	credIdx, err := s.Append(ctx, sheet.Row{"AC1", "tok1", "", "", "", "", "", "", "", "", "+1555"})
	require.NoError(t, err)
	assert.Equal(t, 1, credIdx)

	cmdIdx, err := s.Append(ctx, sheet.Row{"AC1", "tok1", "+1555", "+1666", "", "send_text", "", "hello", "", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, cmdIdx)

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "+1555", rows[0].Cell(sheet.ColAssignedPhone))
	assert.Equal(t, "send_text", rows[1].Cell(sheet.ColPurpose))

	row, err := s.Row(ctx, cmdIdx)
	require.NoError(t, err)
	assert.Equal(t, "hello", row.Cell(sheet.ColBody))
	assert.Equal(t, "", row.Cell(sheet.ColStatus))
}

func TestStore_RowMissing(t *testing.T) {
	s := setupTestStore(t)

	row, err := s.Row(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, row)

	_, err = s.Row(context.Background(), 0)
	assert.Error(t, err)
}

func TestStore_SetResult(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	idx, err := s.Append(ctx, sheet.Row{"AC1", "tok1", "+1", "+2", "", "direct_call", "", "", "", ""})
	require.NoError(t, err)

	require.NoError(t, s.SetResult(ctx, idx, "37", "Completed"))

	row, err := s.Row(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, "37", row.Cell(sheet.ColDuration))
	assert.Equal(t, "Completed", row.Cell(sheet.ColStatus))

	assert.Error(t, s.SetResult(ctx, idx+10, "", "x"))
}

func TestStore_ConcurrentAppendsGetDistinctIndexes(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		indexes = make(map[int]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, err := s.Append(ctx, sheet.Row{"AC1", "tok1", "+1", "+2", "", "check_inbox"})
			assert.NoError(t, err)
			mu.Lock()
			indexes[idx] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, indexes, n)
}

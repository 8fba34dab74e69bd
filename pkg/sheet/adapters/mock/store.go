// Package mock provides an in-memory sheet store for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// FakeStore is an in-memory sheet.Store. Rows are kept in document order and
// row indexes are 1-based, like a spreadsheet.
type FakeStore struct {
	mu sync.RWMutex

	rows []sheet.Row

	// RowsErr, RowErr and AppendErr are returned by the matching methods
	// when set.
	RowsErr   error
	RowErr    error
	AppendErr error

	// OnAppend is called after a row has been appended, outside the lock.
	// Tests use it to play the relay actor.
	OnAppend func(index int, row sheet.Row)

	// RowReads counts calls to Row per index.
	RowReads map[int]int
}

// Compile-time interface checks
var (
	_ sheet.Store        = (*FakeStore)(nil)
	_ sheet.ResultWriter = (*FakeStore)(nil)
)

// NewFakeStore creates a fake store seeded with rows.
func NewFakeStore(rows ...sheet.Row) *FakeStore {
	s := &FakeStore{
		RowReads: make(map[int]int),
	}
	for _, r := range rows {
		s.rows = append(s.rows, copyRow(r))
	}
	return s
}

// Rows implements sheet.Store.
func (s *FakeStore) Rows(ctx context.Context) ([]sheet.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.RowsErr != nil {
		return nil, s.RowsErr
	}

	out := make([]sheet.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

// Row implements sheet.Store.
func (s *FakeStore) Row(ctx context.Context, index int) (sheet.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.RowReads[index]++
	if s.RowErr != nil {
		return nil, s.RowErr
	}
	if index < 1 || index > len(s.rows) {
		return sheet.Row{}, nil
	}
	return copyRow(s.rows[index-1]), nil
}

// Append implements sheet.Store.
func (s *FakeStore) Append(ctx context.Context, row sheet.Row) (int, error) {
	s.mu.Lock()
	if s.AppendErr != nil {
		s.mu.Unlock()
		return 0, s.AppendErr
	}
	s.rows = append(s.rows, copyRow(row))
	index := len(s.rows)
	hook := s.OnAppend
	s.mu.Unlock()

	if hook != nil {
		hook(index, copyRow(row))
	}
	return index, nil
}

// SetResult implements sheet.ResultWriter.
func (s *FakeStore) SetResult(ctx context.Context, index int, duration, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 1 || index > len(s.rows) {
		return fmt.Errorf("row %d does not exist", index)
	}
	r := s.rows[index-1]
	for len(r) < sheet.CommandWidth {
		r = append(r, "")
	}
	r[sheet.ColDuration] = duration
	r[sheet.ColStatus] = status
	s.rows[index-1] = r
	return nil
}

// Len returns the number of rows in the store.
func (s *FakeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Last returns the most recently appended row, or nil when empty.
func (s *FakeStore) Last() sheet.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.rows) == 0 {
		return nil
	}
	return copyRow(s.rows[len(s.rows)-1])
}

// Reads returns how many times row index was read.
func (s *FakeStore) Reads(index int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RowReads[index]
}

func copyRow(r sheet.Row) sheet.Row {
	out := make(sheet.Row, len(r))
	copy(out, r)
	return out
}

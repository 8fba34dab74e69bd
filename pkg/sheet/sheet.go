// Package sheet defines the shared tabular store that carries both credential
// declarations and command rows for the relay protocol.
//
// The column layout is a persisted contract with the relay actor. Columns
// must not be renumbered without a protocol version bump.
package sheet

import (
	"context"
)

// Column indexes (zero-based) of a store row.
const (
	ColAccountSID    = iota // A
	ColAuthToken            // B
	ColFrom                 // C
	ColTo                   // D
	ColSecondary            // E
	ColPurpose              // F
	ColFlag                 // G
	ColBody                 // H
	ColDuration             // I, written by the relay actor only
	ColStatus               // J, written by the relay actor only
	ColAssignedPhone        // K, credential rows only
)

const (
	// CommandWidth is the number of columns the core writes for a command row.
	CommandWidth = 10

	// Width is the full row width including the credential assignment column.
	Width = 11
)

// Row is a single store row. Rows read back from a store may be shorter than
// Width when trailing cells are empty.
type Row []string

// NewCommandRow returns an empty command row of CommandWidth columns.
func NewCommandRow() Row {
	return make(Row, CommandWidth)
}

// Cell returns the value at column i, or "" when the row is too short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// BlankBetween reports whether every column in [from, to] is empty.
func (r Row) BlankBetween(from, to int) bool {
	for i := from; i <= to; i++ {
		if r.Cell(i) != "" {
			return false
		}
	}
	return true
}

// Store is the tabular medium shared with the relay actor.
//
// Row indexes are 1-based and follow document order.
type Store interface {
	// Rows returns every row in document order.
	Rows(ctx context.Context) ([]Row, error)

	// Row returns the row at the given 1-based index. A row that does not
	// exist yet is returned as an empty Row.
	Row(ctx context.Context, index int) (Row, error)

	// Append writes row after the last row of the store and returns the
	// 1-based index the store acknowledged for it.
	Append(ctx context.Context, row Row) (int, error)
}

// ResultWriter is implemented by stores that let local tooling play the role
// of the relay actor by filling the result columns of a command row.
type ResultWriter interface {
	SetResult(ctx context.Context, index int, duration, status string) error
}

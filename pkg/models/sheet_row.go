package models

import (
	"time"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// SheetRow is one row of the local store. Its ID is the 1-based row index the
// relay actor and the API agree on.
type SheetRow struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	A string `gorm:"column:a;type:text;not null;default:'';index:idx_sheet_rows_credentials" json:"a"` // account id
	B string `gorm:"column:b;type:text;not null;default:'';index:idx_sheet_rows_credentials" json:"b"` // auth secret
	C string `gorm:"column:c;type:text;not null;default:''" json:"c"`
	D string `gorm:"column:d;type:text;not null;default:''" json:"d"`
	E string `gorm:"column:e;type:text;not null;default:''" json:"e"`
	F string `gorm:"column:f;type:text;not null;default:''" json:"f"` // purpose tag
	G string `gorm:"column:g;type:text;not null;default:''" json:"g"`
	H string `gorm:"column:h;type:text;not null;default:''" json:"h"`
	I string `gorm:"column:i;type:text;not null;default:''" json:"i"` // duration
	J string `gorm:"column:j;type:text;not null;default:''" json:"j"` // status
	K string `gorm:"column:k;type:text;not null;default:''" json:"k"` // assigned phone

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (SheetRow) TableName() string {
	return "sheet_rows"
}

// NewSheetRow builds a model from a store row. Cells past column K are
// dropped.
func NewSheetRow(r sheet.Row) *SheetRow {
	return &SheetRow{
		A: r.Cell(sheet.ColAccountSID),
		B: r.Cell(sheet.ColAuthToken),
		C: r.Cell(sheet.ColFrom),
		D: r.Cell(sheet.ColTo),
		E: r.Cell(sheet.ColSecondary),
		F: r.Cell(sheet.ColPurpose),
		G: r.Cell(sheet.ColFlag),
		H: r.Cell(sheet.ColBody),
		I: r.Cell(sheet.ColDuration),
		J: r.Cell(sheet.ColStatus),
		K: r.Cell(sheet.ColAssignedPhone),
	}
}

// Row converts the model back into a store row. Trailing empty cells are
// trimmed, the way spreadsheet APIs return them.
func (m *SheetRow) Row() sheet.Row {
	r := sheet.Row{m.A, m.B, m.C, m.D, m.E, m.F, m.G, m.H, m.I, m.J, m.K}
	end := len(r)
	for end > 0 && r[end-1] == "" {
		end--
	}
	return r[:end]
}

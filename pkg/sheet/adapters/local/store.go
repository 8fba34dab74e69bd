// Package local provides a sheet store backed by an embedded SQLite database.
// It is used in zero-config mode and by operator tooling that plays the relay
// actor during development.
package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/switchboard/pkg/database"
	"github.com/hashicorp-forge/switchboard/pkg/models"
	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

const providerName = "local"

// Store implements sheet.Store on top of the sheet_rows table.
type Store struct {
	db     *gorm.DB
	logger hclog.Logger
}

// Compile-time interface checks
var (
	_ sheet.Store        = (*Store)(nil)
	_ sheet.ResultWriter = (*Store)(nil)
)

// Open opens (and migrates) the SQLite store at path.
func Open(path string, log hclog.Logger) (*Store, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	db, err := database.Open(database.Config{Path: path}, log)
	if err != nil {
		return nil, err
	}
	return New(db, log)
}

// New wraps an existing database handle, migrating the sheet_rows table.
func New(db *gorm.DB, log hclog.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}

	if err := db.AutoMigrate(models.ModelsToAutoMigrate()...); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return &Store{
		db:     db,
		logger: log.Named("local-store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return database.Close(s.db)
}

// Rows implements sheet.Store.
func (s *Store) Rows(ctx context.Context) ([]sheet.Row, error) {
	var records []models.SheetRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, sheet.NewStoreError(providerName, "read", false, err)
	}

	rows := make([]sheet.Row, 0, len(records))
	for i := range records {
		rows = append(rows, records[i].Row())
	}
	return rows, nil
}

// Row implements sheet.Store.
func (s *Store) Row(ctx context.Context, index int) (sheet.Row, error) {
	if index < 1 {
		return nil, sheet.NewStoreError(providerName, "read", false,
			fmt.Errorf("invalid row index %d", index))
	}

	var record models.SheetRow
	err := s.db.WithContext(ctx).First(&record, index).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sheet.Row{}, nil
	}
	if err != nil {
		return nil, sheet.NewStoreError(providerName, "read", false, err)
	}
	return record.Row(), nil
}

// Append implements sheet.Store. The autoincrement id assigned by the insert
// is the row index.
func (s *Store) Append(ctx context.Context, row sheet.Row) (int, error) {
	record := models.NewSheetRow(row)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return 0, sheet.NewStoreError(providerName, "append", false, err)
	}

	s.logger.Debug("appended row", "row", record.ID, "purpose", record.F)
	return int(record.ID), nil
}

// SetResult implements sheet.ResultWriter.
func (s *Store) SetResult(ctx context.Context, index int, duration, status string) error {
	res := s.db.WithContext(ctx).
		Model(&models.SheetRow{}).
		Where("id = ?", index).
		Updates(map[string]interface{}{"i": duration, "j": status})
	if res.Error != nil {
		return sheet.NewStoreError(providerName, "update", false, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("row %d does not exist", index)
	}
	return nil
}

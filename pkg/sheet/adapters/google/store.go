// Package google provides a sheet store backed by a Google Sheets worksheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

const providerName = "google"

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	updatedRangePattern  = regexp.MustCompile(`!\$?[A-Za-z]+\$?(\d+)`)
)

// Config contains configuration for the Google Sheets store.
type Config struct {
	// SpreadsheetURL is the spreadsheet URL or bare spreadsheet ID.
	SpreadsheetURL string

	// Worksheet is the worksheet title. Empty selects the first worksheet.
	Worksheet string

	// CredentialsJSON is a service account key file.
	CredentialsJSON []byte
}

// Store implements sheet.Store against one worksheet of a spreadsheet.
type Store struct {
	service       *sheets.Service
	spreadsheetID string
	worksheet     string
	logger        hclog.Logger
}

// Compile-time interface checks
var (
	_ sheet.Store        = (*Store)(nil)
	_ sheet.ResultWriter = (*Store)(nil)
)

// New creates a store authenticated with the service account in cfg.
func New(ctx context.Context, cfg Config, log hclog.Logger) (*Store, error) {
	spreadsheetID, err := SpreadsheetID(cfg.SpreadsheetURL)
	if err != nil {
		return nil, err
	}
	if len(cfg.CredentialsJSON) == 0 {
		return nil, fmt.Errorf("service account credentials are required")
	}

	jwtConfig, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("error parsing service account credentials: %w", err)
	}

	return NewWithOptions(ctx, spreadsheetID, cfg.Worksheet, log,
		option.WithTokenSource(jwtConfig.TokenSource(ctx)))
}

// NewWithOptions creates a store with explicit client options. An empty
// worksheet resolves to the first worksheet of the spreadsheet.
func NewWithOptions(
	ctx context.Context,
	spreadsheetID, worksheet string,
	log hclog.Logger,
	opts ...option.ClientOption,
) (*Store, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating sheets service: %w", err)
	}

	s := &Store{
		service:       srv,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		logger:        log.Named("google-store"),
	}

	if s.worksheet == "" {
		title, err := s.firstWorksheet(ctx)
		if err != nil {
			return nil, err
		}
		s.worksheet = title
	}

	s.logger.Info("using spreadsheet worksheet",
		"spreadsheet_id", spreadsheetID,
		"worksheet", s.worksheet,
	)
	return s, nil
}

// Worksheet returns the title of the worksheet in use.
func (s *Store) Worksheet() string {
	return s.worksheet
}

// Rows implements sheet.Store.
func (s *Store) Rows(ctx context.Context) ([]sheet.Row, error) {
	resp, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.a1("A1:K")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, storeError("read", err)
	}
	return toRows(resp.Values), nil
}

// Row implements sheet.Store.
func (s *Store) Row(ctx context.Context, index int) (sheet.Row, error) {
	if index < 1 {
		return nil, sheet.NewStoreError(providerName, "read", false,
			fmt.Errorf("invalid row index %d", index))
	}

	resp, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.a1(fmt.Sprintf("A%d:K%d", index, index))).
		Context(ctx).
		Do()
	if err != nil {
		return nil, storeError("read", err)
	}

	rows := toRows(resp.Values)
	if len(rows) == 0 {
		return sheet.Row{}, nil
	}
	return rows[0], nil
}

// Append implements sheet.Store. The row index is taken from the range the
// API reports as updated, never from a second read.
func (s *Store) Append(ctx context.Context, row sheet.Row) (int, error) {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	resp, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.a1("A1"), &sheets.ValueRange{
			Values: [][]interface{}{values},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, storeError("append", err)
	}
	if resp.Updates == nil {
		return 0, sheet.NewStoreError(providerName, "append", false,
			fmt.Errorf("append response has no updated range"))
	}

	index, err := ParseUpdatedRow(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, sheet.NewStoreError(providerName, "append", false, err)
	}

	s.logger.Debug("appended row", "row", index, "range", resp.Updates.UpdatedRange)
	return index, nil
}

// SetResult implements sheet.ResultWriter.
func (s *Store) SetResult(ctx context.Context, index int, duration, status string) error {
	_, err := s.service.Spreadsheets.Values.
		Update(s.spreadsheetID, s.a1(fmt.Sprintf("I%d:J%d", index, index)), &sheets.ValueRange{
			Values: [][]interface{}{{duration, status}},
		}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return storeError("update", err)
	}
	return nil
}

func (s *Store) firstWorksheet(ctx context.Context) (string, error) {
	resp, err := s.service.Spreadsheets.
		Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return "", storeError("open", err)
	}

	var first *sheets.SheetProperties
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		if first == nil || sh.Properties.Index < first.Index {
			first = sh.Properties
		}
	}
	if first == nil {
		return "", sheet.NewStoreError(providerName, "open", false,
			fmt.Errorf("spreadsheet %s has no worksheets", s.spreadsheetID))
	}
	return first.Title, nil
}

// a1 prefixes a cell range with the quoted worksheet title.
func (s *Store) a1(cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(s.worksheet, "'", "''"), cells)
}

// SpreadsheetID extracts the spreadsheet ID from a spreadsheet URL. A value
// without a slash is taken to be an ID already.
func SpreadsheetID(spreadsheetURL string) (string, error) {
	if spreadsheetURL == "" {
		return "", fmt.Errorf("spreadsheet URL is required")
	}
	if !strings.Contains(spreadsheetURL, "/") {
		return spreadsheetURL, nil
	}

	m := spreadsheetIDPattern.FindStringSubmatch(spreadsheetURL)
	if m == nil {
		return "", fmt.Errorf("no spreadsheet ID in URL %q", spreadsheetURL)
	}
	return m[1], nil
}

// ParseUpdatedRow returns the first row number of an A1 range such as
// "'Sheet1'!A12:J12".
func ParseUpdatedRow(updatedRange string) (int, error) {
	m := updatedRangePattern.FindStringSubmatch(updatedRange)
	if m == nil {
		return 0, fmt.Errorf("cannot parse row from range %q", updatedRange)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid row in range %q", updatedRange)
	}
	return n, nil
}

func toRows(values [][]interface{}) []sheet.Row {
	rows := make([]sheet.Row, 0, len(values))
	for _, vs := range values {
		r := make(sheet.Row, len(vs))
		for i, v := range vs {
			if v == nil {
				continue
			}
			r[i] = fmt.Sprint(v)
		}
		rows = append(rows, r)
	}
	return rows
}

// storeError classifies a Sheets API failure. Rate limiting and server-side
// failures are retryable.
func storeError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return sheet.NewStoreError(providerName, op, true, err)
		}
	}
	return sheet.NewStoreError(providerName, op, false, err)
}

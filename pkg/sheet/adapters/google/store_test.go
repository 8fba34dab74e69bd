package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hashicorp-forge/switchboard/pkg/sheet"
)

// fakeSheets serves the subset of the Sheets v4 API the store uses.
type fakeSheets struct {
	mu       sync.Mutex
	rows     [][]interface{}
	requests []string
	status   int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	if f.status != 0 {
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.status, "message": "fake failure"},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case path == "/v4/spreadsheets/sheet-id":
		json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{
				map[string]any{"properties": map[string]any{"title": "Second", "index": 1}},
				map[string]any{"properties": map[string]any{"title": "Relay", "index": 0}},
			},
		})

	case strings.HasSuffix(path, ":append"):
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]interface{} `json:"values"`
		}
		json.Unmarshal(body, &vr)
		f.rows = append(f.rows, vr.Values...)
		n := len(f.rows)
		json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{
				"updatedRange": "'Relay'!A" + strconv.Itoa(n) + ":J" + strconv.Itoa(n),
			},
		})

	case strings.HasPrefix(path, "/v4/spreadsheets/sheet-id/values/"):
		rng := strings.TrimPrefix(path, "/v4/spreadsheets/sheet-id/values/")
		if r.Method == http.MethodPut {
			json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng})
			return
		}
		values := f.rows
		if rng != "'Relay'!A1:K" {
			// Single row request, e.g. 'Relay'!A2:K2.
			idx := parseRowIndex(rng)
			values = nil
			if idx >= 1 && idx <= len(f.rows) {
				values = f.rows[idx-1 : idx]
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})

	default:
		http.NotFound(w, r)
	}
}

func parseRowIndex(rng string) int {
	n, err := ParseUpdatedRow(rng)
	if err != nil {
		return 0
	}
	return n
}

func newTestStore(t *testing.T, fake *fakeSheets) *Store {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewWithOptions(context.Background(), "sheet-id", "", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return s
}

func TestStore_ResolvesFirstWorksheet(t *testing.T) {
	s := newTestStore(t, &fakeSheets{})
	assert.Equal(t, "Relay", s.Worksheet())
}

func TestStore_AppendUsesAcknowledgedRange(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSheets{
		rows: [][]interface{}{{"AC1", "tok1", "", "", "", "", "", "", "", "", "+1555"}},
	}
	s := newTestStore(t, fake)

	idx, err := s.Append(ctx, sheet.Row{"AC1", "tok1", "+1555", "+1666", "", "send_text", "", "hi", "", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "+1555", rows[0].Cell(sheet.ColAssignedPhone))
	assert.Equal(t, "send_text", rows[1].Cell(sheet.ColPurpose))

	row, err := s.Row(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, "hi", row.Cell(sheet.ColBody))

	missing, err := s.Row(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, missing)

	// Only one read of all rows was made, by the explicit Rows call.
	var fullReads int
	for _, req := range fake.requests {
		if strings.HasSuffix(req, "'Relay'!A1:K") {
			fullReads++
		}
	}
	assert.Equal(t, 1, fullReads)
}

func TestStore_SetResult(t *testing.T) {
	fake := &fakeSheets{}
	s := newTestStore(t, fake)

	require.NoError(t, s.SetResult(context.Background(), 3, "12", "completed"))
	assert.Contains(t, fake.requests[len(fake.requests)-1], "PUT /v4/spreadsheets/sheet-id/values/'Relay'!I3:J3")
}

func TestStore_ErrorsAreClassified(t *testing.T) {
	fake := &fakeSheets{}
	s := newTestStore(t, fake)

	fake.mu.Lock()
	fake.status = http.StatusTooManyRequests
	fake.mu.Unlock()

	_, err := s.Row(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, sheet.IsRetryable(err))

	fake.mu.Lock()
	fake.status = http.StatusForbidden
	fake.mu.Unlock()

	_, err = s.Append(context.Background(), sheet.Row{"a"})
	require.Error(t, err)
	assert.False(t, sheet.IsRetryable(err))
}

func TestSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "full URL",
			input: "https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0",
			want:  "1AbC-d_9",
		},
		{
			name:  "bare ID",
			input: "1AbC-d_9",
			want:  "1AbC-d_9",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "URL without ID",
			input:   "https://docs.google.com/document/x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpreadsheetID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUpdatedRow(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "'Sheet1'!A12:J12", want: 12},
		{input: "Sheet1!A7:J7", want: 7},
		{input: "'It''s'!$A$3:$J$3", want: 3},
		{input: "Sheet1", wantErr: true},
		{input: "Sheet1!A0:J0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUpdatedRow(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreErrorClassification(t *testing.T) {
	assert.True(t, sheet.IsRetryable(storeError("read", &googleapi.Error{Code: 503})))
	assert.False(t, sheet.IsRetryable(storeError("read", &googleapi.Error{Code: 404})))
	assert.False(t, sheet.IsRetryable(storeError("read", errors.New("dial tcp: refused"))))
}

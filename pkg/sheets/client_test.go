package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Credentials{},
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	)
	require.NoError(t, err)
	return c
}

func TestValues_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/spreadsheets/sheet-1/values/")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range": "Companies!A1:L",
			"values": [][]any{
				{"NAME", "STATE", "ARR"},
				{"Acme", "NY", "15000"},
				{"Globex", "TX", 50000.5},
			},
		})
	})

	rows, err := client.Values(context.Background(), "sheet-1", "Companies!A1:L")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"NAME", "STATE", "ARR"}, rows[0])
	assert.Equal(t, []string{"Acme", "NY", "15000"}, rows[1])
	// Unformatted numeric cells come back as JSON numbers.
	assert.Equal(t, []string{"Globex", "TX", "50000.5"}, rows[2])
}

func TestValues_EmptyRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Companies!A1:L"}`))
	})

	rows, err := client.Values(context.Background(), "sheet-1", "Companies!A1:L")
	require.NoError(t, err)
	assert.Nil(t, rows, "empty sheet is not an error")
}

func TestValues_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"values":[["NAME"],["Acme"]]}`))
	})

	rows, err := client.Values(context.Background(), "sheet-1", "A1:A2")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestValues_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Values(context.Background(), "sheet-1", "A1:A2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	assert.Equal(t, int32(3), calls.Load())
}

func TestValues_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"permission denied"}}`))
	})

	_, err := client.Values(context.Background(), "sheet-1", "A1:A2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestValues_MissingSpreadsheetID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Values(context.Background(), "", "A1:A2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet id")
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Credentials{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

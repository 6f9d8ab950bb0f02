package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/arr-heatmap/internal/model"
)

func validRow() model.RawRow {
	return model.RawRow{
		"NAME":                                "Acme",
		"Full Address":                        "1 Main St",
		"Lat":                                 "40.0",
		"Lon":                                 "-75.0",
		"MAXIO  LOCAL ARR AT END OF MONTH  C": "15000",
		"STATE":                               "NY",
		"Phone Number":                        "555-0100",
		"HS OBJECT ID":                        "12345",
	}
}

func newStrict(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(DefaultColumns(), Options{})
	require.NoError(t, err)
	return n
}

func TestNormalize_Accepted(t *testing.T) {
	n := newStrict(t)

	rec, rej := n.Normalize(validRow(), 1)
	require.Nil(t, rej)
	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "1 Main St", rec.Address)
	assert.InDelta(t, 40.0, rec.Latitude, 1e-9)
	assert.InDelta(t, -75.0, rec.Longitude, 1e-9)
	assert.InDelta(t, 15000.0, rec.ARR, 1e-9)
	assert.Equal(t, "NY", rec.State)
	assert.Equal(t, "555-0100", rec.Phone)
	assert.Equal(t, "12345", rec.CompanyID)
}

func TestNormalize_CurrencyFormatting(t *testing.T) {
	n := newStrict(t)

	row := validRow()
	row["MAXIO  LOCAL ARR AT END OF MONTH  C"] = " $1,234,567.89 "

	rec, rej := n.Normalize(row, 1)
	require.Nil(t, rej)
	assert.InDelta(t, 1234567.89, rec.ARR, 1e-6)
}

func TestNormalize_FallbackLabels(t *testing.T) {
	n := newStrict(t)

	// Older sheet revisions used ADDRESS, ARR, and PHONE.
	row := model.RawRow{
		"NAME":    "Acme",
		"ADDRESS": "1 Main St",
		"Lat":     "40.0",
		"Lon":     "-75.0",
		"ARR":     "15000",
		"PHONE":   "555-0100",
	}

	rec, rej := n.Normalize(row, 1)
	require.Nil(t, rej)
	assert.Equal(t, "1 Main St", rec.Address)
	assert.InDelta(t, 15000.0, rec.ARR, 1e-9)
	assert.Equal(t, "555-0100", rec.Phone)
}

func TestNormalize_Rejections(t *testing.T) {
	n := newStrict(t)

	tests := []struct {
		name      string
		mutate    func(model.RawRow)
		wantField string
	}{
		{
			name:      "empty name",
			mutate:    func(r model.RawRow) { r["NAME"] = "   " },
			wantField: "name",
		},
		{
			name:      "missing name column",
			mutate:    func(r model.RawRow) { delete(r, "NAME") },
			wantField: "name",
		},
		{
			name:      "empty address",
			mutate:    func(r model.RawRow) { r["Full Address"] = "" },
			wantField: "address",
		},
		{
			name:      "missing latitude",
			mutate:    func(r model.RawRow) { delete(r, "Lat") },
			wantField: "lat",
		},
		{
			name:      "latitude not numeric",
			mutate:    func(r model.RawRow) { r["Lat"] = "forty" },
			wantField: "lat",
		},
		{
			name:      "latitude out of range",
			mutate:    func(r model.RawRow) { r["Lat"] = "91.2" },
			wantField: "lat",
		},
		{
			name:      "longitude out of range",
			mutate:    func(r model.RawRow) { r["Lon"] = "-190" },
			wantField: "lon",
		},
		{
			name:      "revenue not numeric",
			mutate:    func(r model.RawRow) { r["MAXIO  LOCAL ARR AT END OF MONTH  C"] = "n/a" },
			wantField: "arr",
		},
		{
			name:      "revenue NaN text",
			mutate:    func(r model.RawRow) { r["MAXIO  LOCAL ARR AT END OF MONTH  C"] = "NaN" },
			wantField: "arr",
		},
		{
			name:      "revenue negative",
			mutate:    func(r model.RawRow) { r["MAXIO  LOCAL ARR AT END OF MONTH  C"] = "-500" },
			wantField: "arr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)

			_, rej := n.Normalize(row, 7)
			require.NotNil(t, rej)
			assert.Equal(t, 7, rej.Row)
			assert.Contains(t, rej.Fields, tt.wantField)
			assert.NotEmpty(t, rej.Reason)
		})
	}
}

func TestNormalize_MultipleFailuresReported(t *testing.T) {
	n := newStrict(t)

	_, rej := n.Normalize(model.RawRow{}, 3)
	require.NotNil(t, rej)
	assert.Equal(t, 3, rej.Row)
	assert.ElementsMatch(t, []string{"name", "address", "lat", "lon", "arr"}, rej.Fields)
}

func TestNormalize_NegativeRevenueLenient(t *testing.T) {
	n, err := New(DefaultColumns(), Options{AllowNegativeRevenue: true})
	require.NoError(t, err)

	row := validRow()
	row["MAXIO  LOCAL ARR AT END OF MONTH  C"] = "-500"

	rec, rej := n.Normalize(row, 1)
	require.Nil(t, rej)
	assert.InDelta(t, -500.0, rec.ARR, 1e-9)
}

func TestNormalize_OptionalFieldsDefaultEmpty(t *testing.T) {
	n := newStrict(t)

	row := validRow()
	delete(row, "STATE")
	delete(row, "Phone Number")
	delete(row, "HS OBJECT ID")

	rec, rej := n.Normalize(row, 1)
	require.Nil(t, rej)
	assert.Empty(t, rec.State)
	assert.Empty(t, rec.Phone)
	assert.Empty(t, rec.CompanyID)
}

func TestNormalize_ExtraColumnsDiscarded(t *testing.T) {
	n := newStrict(t)

	row := validRow()
	row["MAXIO  CUSTOMER STATUS  C"] = "active"
	row["CITY"] = "Philadelphia"

	rec, rej := n.Normalize(row, 1)
	require.Nil(t, rej)
	// The record shape is fixed; extras have nowhere to land.
	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "NY", rec.State)
}

func TestColumnMapping_Validate(t *testing.T) {
	assert.NoError(t, DefaultColumns().Validate())

	m := DefaultColumns()
	m.Revenue = nil
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revenue")

	_, err = New(m, Options{})
	assert.Error(t, err)
}

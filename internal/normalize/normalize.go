// Package normalize converts raw sheet rows into validated company records.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/arr-heatmap/internal/model"
)

// ColumnMapping names the raw column labels that feed each record field.
// Each field lists candidate labels tried in order, because the sheet's
// labels have drifted across revisions (the revenue and address columns in
// particular). Name, Address, Latitude, Longitude, and Revenue are
// required; the rest default to empty when unmapped or absent.
type ColumnMapping struct {
	Name      []string `yaml:"name" mapstructure:"name"`
	Address   []string `yaml:"address" mapstructure:"address"`
	Latitude  []string `yaml:"latitude" mapstructure:"latitude"`
	Longitude []string `yaml:"longitude" mapstructure:"longitude"`
	Revenue   []string `yaml:"revenue" mapstructure:"revenue"`
	Phone     []string `yaml:"phone" mapstructure:"phone"`
	State     []string `yaml:"state" mapstructure:"state"`
	CompanyID []string `yaml:"company_id" mapstructure:"company_id"`
}

// DefaultColumns returns the mapping for the current sheet layout, with
// fallbacks covering the labels older revisions used.
func DefaultColumns() ColumnMapping {
	return ColumnMapping{
		Name:      []string{"NAME"},
		Address:   []string{"Full Address", "ADDRESS"},
		Latitude:  []string{"Lat"},
		Longitude: []string{"Lon"},
		Revenue:   []string{"MAXIO  LOCAL ARR AT END OF MONTH  C", "ARR"},
		Phone:     []string{"Phone Number", "PHONE"},
		State:     []string{"STATE"},
		CompanyID: []string{"HS OBJECT ID"},
	}
}

// Validate checks that every required field has at least one label.
func (m ColumnMapping) Validate() error {
	required := []struct {
		field  string
		labels []string
	}{
		{"name", m.Name},
		{"address", m.Address},
		{"latitude", m.Latitude},
		{"longitude", m.Longitude},
		{"revenue", m.Revenue},
	}
	for _, r := range required {
		if len(r.labels) == 0 {
			return eris.Errorf("normalize: no column mapped for %s", r.field)
		}
	}
	return nil
}

// Options tunes validation strictness.
type Options struct {
	// AllowNegativeRevenue accepts finite negative ARR values. Some legacy
	// sheet revisions carried credit adjustments as negative rows; the
	// strict default rejects them.
	AllowNegativeRevenue bool
}

// Normalizer converts raw rows into records, enforcing every record
// invariant. It is the sole gate: no CompanyRecord may exist in an
// invalid state downstream of it.
type Normalizer struct {
	cols ColumnMapping
	opts Options
}

// New builds a Normalizer, validating the mapping once up front.
func New(cols ColumnMapping, opts Options) (*Normalizer, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{cols: cols, opts: opts}, nil
}

var revenueCleaner = strings.NewReplacer("$", "", ",", "")

// Normalize converts one raw row. pos is the 1-based position of the row
// in the original input, carried into the rejection for diagnostics. On
// any validation failure the row is dropped whole: no partially filled
// record is ever returned. Extra raw columns are discarded, never merged
// into the record.
func (n *Normalizer) Normalize(raw model.RawRow, pos int) (model.CompanyRecord, *model.Rejection) {
	rec := model.CompanyRecord{
		Name:      strings.TrimSpace(pick(raw, n.cols.Name)),
		Address:   strings.TrimSpace(pick(raw, n.cols.Address)),
		Phone:     strings.TrimSpace(pick(raw, n.cols.Phone)),
		State:     strings.TrimSpace(pick(raw, n.cols.State)),
		CompanyID: strings.TrimSpace(pick(raw, n.cols.CompanyID)),
	}

	var failed []string
	var reasons []string
	fail := func(field, reason string) {
		failed = append(failed, field)
		reasons = append(reasons, reason)
	}

	if rec.Name == "" {
		fail("name", "empty name")
	}
	if rec.Address == "" {
		fail("address", "empty address")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(pick(raw, n.cols.Latitude)), 64)
	switch {
	case err != nil:
		fail("lat", "latitude is not a number")
	case math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90:
		fail("lat", fmt.Sprintf("latitude %v out of range", lat))
	default:
		rec.Latitude = lat
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(pick(raw, n.cols.Longitude)), 64)
	switch {
	case err != nil:
		fail("lon", "longitude is not a number")
	case math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180:
		fail("lon", fmt.Sprintf("longitude %v out of range", lon))
	default:
		rec.Longitude = lon
	}

	arrRaw := strings.TrimSpace(revenueCleaner.Replace(pick(raw, n.cols.Revenue)))
	arr, err := strconv.ParseFloat(arrRaw, 64)
	switch {
	case err != nil:
		fail("arr", "revenue is not a number")
	case math.IsNaN(arr) || math.IsInf(arr, 0):
		fail("arr", "revenue is not finite")
	case arr < 0 && !n.opts.AllowNegativeRevenue:
		fail("arr", fmt.Sprintf("negative revenue %v", arr))
	default:
		rec.ARR = arr
	}

	if len(failed) > 0 {
		return model.CompanyRecord{}, &model.Rejection{
			Row:    pos,
			Fields: failed,
			Reason: strings.Join(reasons, "; "),
		}
	}
	return rec, nil
}

// pick returns the first non-empty value among the candidate labels.
func pick(raw model.RawRow, labels []string) string {
	for _, label := range labels {
		if v := raw[label]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

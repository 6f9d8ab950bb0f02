// Package model defines the data types shared across the heatmap pipeline.
package model

// RawRow is one unvalidated record as delivered by the tabular source:
// a mapping from column label to cell value. Column labels are externally
// defined and have drifted across sheet revisions; any field may be
// absent, empty, or malformed.
type RawRow map[string]string

// CompanyRecord is the validated internal representation of one company.
// Only the normalizer constructs accepted records, so downstream code may
// assume every required field holds: non-empty name and address, finite
// in-range coordinates, and finite non-negative ARR (unless the lenient
// revenue mode was enabled at construction). Records are immutable after
// construction and live only for one request cycle.
type CompanyRecord struct {
	Name      string  `json:"name" csv:"name"`
	Address   string  `json:"address" csv:"address"`
	Latitude  float64 `json:"lat" csv:"lat"`
	Longitude float64 `json:"lon" csv:"lon"`
	ARR       float64 `json:"arr" csv:"arr"`
	Phone     string  `json:"phone,omitempty" csv:"phone"`
	State     string  `json:"state,omitempty" csv:"state"`
	CompanyID string  `json:"companyId,omitempty" csv:"company_id"`
}

// Rejection describes one raw row dropped by the normalizer. It is
// surfaced for operator diagnostics only and never reaches the data
// payload.
type Rejection struct {
	Row    int      `json:"row"`    // 1-based position in the raw input
	Fields []string `json:"fields"` // fields that failed validation
	Reason string   `json:"reason"`
}

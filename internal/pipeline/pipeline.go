// Package pipeline orchestrates normalize → aggregate into the map view
// bundle consumed by the presentation layer.
package pipeline

import (
	"github.com/sells-group/arr-heatmap/internal/aggregate"
	"github.com/sells-group/arr-heatmap/internal/model"
	"github.com/sells-group/arr-heatmap/internal/normalize"
	"github.com/sells-group/arr-heatmap/internal/region"
	"github.com/sells-group/arr-heatmap/internal/tier"
)

// Config is the single shared configuration structure for one pipeline:
// the column mapping, the tier and region tables, and validation
// strictness. Classifiers and aggregators all read from here, so the
// classification used for marker coloring can never drift from the one
// used for legend aggregation.
type Config struct {
	Columns normalize.ColumnMapping
	Options normalize.Options
	Tiers   tier.Table
	Regions region.Table
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Columns: normalize.DefaultColumns(),
		Tiers:   tier.Default(),
		Regions: region.Default(),
	}
}

// View is the bundle handed to the presentation layer. Rejections are
// operator diagnostics and stay out of the wire payload.
type View struct {
	Records    []model.CompanyRecord     `json:"data"`
	Tiers      []aggregate.TierSummary   `json:"tiers"`
	Regions    []aggregate.RegionSummary `json:"regions"`
	Rejections []model.Rejection         `json:"-"`
}

// Pipeline is a stateless dataset transformer. Construction validates the
// injected tables once; after that every call is a pure full recompute
// with no shared mutable state, safe for concurrent use.
type Pipeline struct {
	norm    *normalize.Normalizer
	tiers   tier.Table
	regions region.Table
}

// New validates cfg and builds a pipeline. A malformed table here is the
// only hard failure in the system; per-row problems are soft rejections.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Tiers.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Regions.Validate(); err != nil {
		return nil, err
	}
	norm, err := normalize.New(cfg.Columns, cfg.Options)
	if err != nil {
		return nil, err
	}
	return &Pipeline{norm: norm, tiers: cfg.Tiers, regions: cfg.Regions}, nil
}

// TierTable exposes the validated tier table, for consumers that style
// individual records (the GeoJSON export) with the same classification
// the legend uses.
func (p *Pipeline) TierTable() tier.Table {
	return p.tiers
}

// BuildView normalizes every raw row, preserving accepted records in
// original relative order and dropping rejects, then aggregates the clean
// collection both ways. Empty or nil input yields empty records and
// zero-filled summaries, never an error; fetch failure is the fetch
// layer's concern and must be distinguished there.
func (p *Pipeline) BuildView(raws []model.RawRow) View {
	records := make([]model.CompanyRecord, 0, len(raws))
	var rejections []model.Rejection
	for i, raw := range raws {
		rec, rej := p.norm.Normalize(raw, i+1)
		if rej != nil {
			rejections = append(rejections, *rej)
			continue
		}
		records = append(records, rec)
	}
	return View{
		Records:    records,
		Tiers:      aggregate.ByTier(records, p.tiers),
		Regions:    aggregate.ByRegion(records, p.regions),
		Rejections: rejections,
	}
}

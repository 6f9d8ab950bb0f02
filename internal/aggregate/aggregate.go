// Package aggregate folds clean records into the legend summaries.
package aggregate

import (
	"sort"

	"github.com/sells-group/arr-heatmap/internal/model"
	"github.com/sells-group/arr-heatmap/internal/region"
	"github.com/sells-group/arr-heatmap/internal/tier"
)

// TierSummary is the per-tier legend entry: account count and ARR sum.
// Recomputed in full on every pass, never mutated incrementally.
type TierSummary struct {
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Accounts int     `json:"accounts"`
	TierSum  float64 `json:"tierSum"`
}

// RegionSummary is the per-region legend entry.
type RegionSummary struct {
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Accounts int     `json:"accounts"`
	TotalARR float64 `json:"totalARR"`
}

// ByTier partitions records by revenue tier. The result always holds
// every tier in canonical table order, zero-filled where empty. Pure and
// order-independent: a fold over the input collection.
func ByTier(records []model.CompanyRecord, tiers tier.Table) []TierSummary {
	out := make([]TierSummary, len(tiers))
	for i, t := range tiers {
		out[i] = TierSummary{Label: t.Label, Color: t.Color}
	}
	for _, rec := range records {
		i := tiers.Index(rec.ARR)
		out[i].Accounts++
		out[i].TierSum += rec.ARR
	}
	return out
}

// ByRegion partitions records by sales region. The result always holds
// all regions, sorted by TotalARR descending with International forced
// last regardless of its sum. Ties keep canonical region order, so the
// output is fully deterministic.
func ByRegion(records []model.CompanyRecord, regions region.Table) []RegionSummary {
	codes := region.Codes()
	idx := make(map[region.Code]int, len(codes))
	out := make([]RegionSummary, len(codes))
	for i, c := range codes {
		idx[c] = i
		out[i] = RegionSummary{Label: string(c), Color: region.Color(c)}
	}
	for _, rec := range records {
		i := idx[regions.Classify(rec.State)]
		out[i].Accounts++
		out[i].TotalARR += rec.ARR
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label == string(region.International) {
			return false
		}
		if out[j].Label == string(region.International) {
			return true
		}
		return out[i].TotalARR > out[j].TotalARR
	})
	return out
}

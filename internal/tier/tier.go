// Package tier buckets annual recurring revenue into the fixed legend tiers.
package tier

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Tier is one revenue bucket. Max is the legend's printed upper bound;
// classification uses half-open [Min, next.Min) intervals so boundary
// values are unambiguous even for inputs that are not cent-quantized.
// The top tier is open-ended.
type Tier struct {
	Label string  `json:"label" yaml:"label"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Color string  `json:"color" yaml:"color"`
}

// Table is an ordered set of contiguous tiers covering [0, +inf).
// It is injected configuration: validated once at load, read-only after.
type Table []Tier

// Default returns the production five-tier table. Labels and colors match
// the map legend.
func Default() Table {
	return Table{
		{Label: "≤ $10K", Min: 0, Max: 9999.99, Color: "green"},
		{Label: "$10K-$25K", Min: 10000, Max: 24999.99, Color: "yellow"},
		{Label: "$25K-$50K", Min: 25000, Max: 49999.99, Color: "orange"},
		{Label: "$50K-100K", Min: 50000, Max: 99999.99, Color: "red"},
		{Label: "≥ $100K", Min: 100000, Max: math.Inf(1), Color: "purple"},
	}
}

// Load reads a tier table from a YAML file. A missing max on the last
// entry is treated as open-ended.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tier: read table file")
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "tier: parse table file")
	}
	if n := len(t); n > 0 && t[n-1].Max == 0 {
		t[n-1].Max = math.Inf(1)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the table once at load time: ascending contiguous
// bounds starting at zero, an open-ended top tier, and usable labels and
// colors. Per-row classification never re-checks any of this.
func (t Table) Validate() error {
	if len(t) == 0 {
		return eris.New("tier: table is empty")
	}
	if t[0].Min != 0 {
		return eris.Errorf("tier: first tier must start at 0, got %v", t[0].Min)
	}
	seen := make(map[string]bool, len(t))
	for i, tr := range t {
		if tr.Label == "" {
			return eris.Errorf("tier: tier %d has no label", i)
		}
		if seen[tr.Label] {
			return eris.Errorf("tier: duplicate label %q", tr.Label)
		}
		seen[tr.Label] = true
		if tr.Color == "" {
			return eris.Errorf("tier: tier %q has no color", tr.Label)
		}
		if math.IsNaN(tr.Min) || math.IsInf(tr.Min, 0) {
			return eris.Errorf("tier: tier %q has non-finite min", tr.Label)
		}
		if tr.Max <= tr.Min {
			return eris.Errorf("tier: tier %q has max below min", tr.Label)
		}
		if i < len(t)-1 {
			next := t[i+1]
			if next.Min <= tr.Min {
				return eris.Errorf("tier: bounds not ascending at %q", next.Label)
			}
			if tr.Max >= next.Min {
				return eris.Errorf("tier: tier %q overlaps %q", tr.Label, next.Label)
			}
		}
	}
	if !math.IsInf(t[len(t)-1].Max, 1) {
		return eris.Errorf("tier: top tier %q must be open-ended", t[len(t)-1].Label)
	}
	return nil
}

// Index returns the index of the tier containing rev under half-open
// [Min, next.Min) semantics. The caller must already have excluded
// negative and non-finite values (the normalizer's job); anything below
// the first bound falls into the first tier rather than failing.
func (t Table) Index(rev float64) int {
	for i := len(t) - 1; i > 0; i-- {
		if rev >= t[i].Min {
			return i
		}
	}
	return 0
}

// Classify returns the tier containing rev.
func (t Table) Classify(rev float64) Tier {
	return t[t.Index(rev)]
}

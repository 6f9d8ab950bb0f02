// Package region maps company states to the fixed sales regions.
package region

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Code is one of the fixed region groupings. The first three carry the
// sales team's codenames; International is the catch-all for any state
// value that cannot be mapped.
type Code string

const (
	Carolina      Code = "Carolina"
	Chiara        Code = "Chiara"
	Arash         Code = "Arash"
	International Code = "International"
)

// Codes lists all regions in canonical order.
func Codes() []Code {
	return []Code{Carolina, Chiara, Arash, International}
}

// Color returns the legend color for a region.
func Color(c Code) string {
	switch c {
	case Carolina:
		return "red"
	case Chiara:
		return "blue"
	case Arash:
		return "green"
	default:
		return "gray"
	}
}

// Table holds the injected classification data: the assignment of known
// state abbreviations to regions, and the abbreviation → full-name map
// that backs the free-text fallback chain. Abbreviations absent from
// Assignments resolve to International.
type Table struct {
	Assignments   map[string]Code   `yaml:"assignments"`
	Abbreviations map[string]string `yaml:"abbreviations"`
}

// Load reads a region table from a YAML file and validates it.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "region: read table file")
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, eris.Wrap(err, "region: parse table file")
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Validate checks the table once at load time. Classification itself
// never fails, so this is the only place malformed region config can
// surface.
func (t Table) Validate() error {
	if len(t.Assignments) == 0 {
		return eris.New("region: no assignments")
	}
	if len(t.Abbreviations) == 0 {
		return eris.New("region: no state abbreviations")
	}
	known := map[Code]bool{Carolina: true, Chiara: true, Arash: true}
	for abbr, code := range t.Assignments {
		if len(abbr) != 2 || abbr != strings.ToUpper(abbr) {
			return eris.Errorf("region: bad abbreviation key %q", abbr)
		}
		if !known[code] {
			return eris.Errorf("region: %q assigned to unknown region %q", abbr, code)
		}
	}
	for abbr, name := range t.Abbreviations {
		if len(abbr) != 2 || abbr != strings.ToUpper(abbr) {
			return eris.Errorf("region: bad abbreviation %q", abbr)
		}
		if strings.TrimSpace(name) == "" {
			return eris.Errorf("region: abbreviation %q has no state name", abbr)
		}
	}
	return nil
}

// Classify resolves a free-text state value to a region. The chain, in
// order: trim and uppercase; empty → International; a known two-letter
// abbreviation is used directly; otherwise the input is treated as a full
// state name; failing that the normalized input itself is used as the
// lookup key. Unassigned abbreviations resolve to International. Pure and
// total: every input produces a Code.
func (t Table) Classify(state string) Code {
	norm := strings.ToUpper(strings.TrimSpace(state))
	if norm == "" {
		return International
	}

	abbr := ""
	if len(norm) == 2 {
		if _, ok := t.Abbreviations[norm]; ok {
			abbr = norm
		}
	}
	if abbr == "" {
		for a, name := range t.Abbreviations {
			if strings.ToUpper(name) == norm {
				abbr = a
				break
			}
		}
	}
	if abbr == "" {
		abbr = norm
	}

	if code, ok := t.Assignments[abbr]; ok {
		return code
	}
	return International
}

// Default returns the production region table.
func Default() Table {
	return Table{
		Assignments: map[string]Code{
			// Carolina
			"AK": Carolina, "WA": Carolina, "OR": Carolina, "CA": Carolina,
			"NV": Carolina, "ID": Carolina, "MT": Carolina, "WY": Carolina,
			"UT": Carolina, "AZ": Carolina, "NM": Carolina, "CO": Carolina,
			"HI": Carolina, "KS": Carolina, "NE": Carolina, "ND": Carolina,
			"SD": Carolina, "MI": Carolina, "WI": Carolina, "MN": Carolina,

			// Chiara
			"FL": Chiara, "AR": Chiara, "LA": Chiara, "MS": Chiara,
			"GA": Chiara, "AL": Chiara, "SC": Chiara, "TX": Chiara,
			"OK": Chiara,

			// Arash
			"VA": Arash, "MO": Arash, "IA": Arash, "IL": Arash,
			"WV": Arash, "MD": Arash, "DE": Arash, "PA": Arash,
			"NJ": Arash, "NY": Arash, "CT": Arash, "RI": Arash,
			"MA": Arash, "VT": Arash, "NH": Arash, "ME": Arash,
			"DC": Arash, "KY": Arash, "IN": Arash, "OH": Arash,
			"TN": Arash, "NC": Arash,
		},
		Abbreviations: map[string]string{
			"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
			"CA": "California", "CO": "Colorado", "CT": "Connecticut",
			"DE": "Delaware", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
			"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
			"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
			"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan",
			"MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
			"MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
			"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
			"NY": "New York", "NC": "North Carolina", "ND": "North Dakota",
			"OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon",
			"PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
			"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
			"UT": "Utah", "VT": "Vermont", "VA": "Virginia",
			"WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin",
			"WY": "Wyoming", "DC": "District of Columbia",
		},
	}
}

package cleaning

import (
	"regexp"
	"strconv"
	"strings"

	"vaxcli/internal/table"
)

// Derived incidence columns
const (
	DenomBaseColumn        = "denom_base"
	IncidencePer100kColumn = "incidence_per_100k"
)

// liveBirthsBase is assumed when a denominator mentions live births without a number
const liveBirthsBase = 10000

var perNumber = regexp.MustCompile(`per\s*([0-9]+)`)

// ParseDenominatorBase extracts the population base from a rate description,
// e.g. "per 100,000 total population" -> 100000.
// ok is false when the text matches no known pattern.
func ParseDenominatorBase(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.ToLower(s), ",", "")
	if m := perNumber.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return n, true
	}
	if strings.Contains(s, "live") && strings.Contains(s, "birth") {
		return liveBirthsBase, true
	}
	return 0, false
}

// DeriveIncidence adds denom_base and incidence_per_100k to a cleaned incidence table.
// Rows whose base or rate is undefined get missing values and stay in the table.
func DeriveIncidence(t *table.Table) *table.Table {
	withBase := t.WithColumn(DenomBaseColumn, func(r int) table.Value {
		v := t.Get(r, "denominator")
		if v.IsMissing() {
			return table.Missing()
		}
		base, ok := ParseDenominatorBase(v.Text())
		if !ok {
			return table.Missing()
		}
		return table.Float(base)
	})

	return withBase.WithColumn(IncidencePer100kColumn, func(r int) table.Value {
		base, okBase := withBase.Get(r, DenomBaseColumn).Float64()
		rate, okRate := withBase.Get(r, "incidence_rate").Float64()
		if !okBase || !okRate {
			return table.Missing()
		}
		return table.Float(rate * 100000 / base)
	})
}

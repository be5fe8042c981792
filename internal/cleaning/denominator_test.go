package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

func TestParseDenominatorBase(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"per 100,000", 100000, true},
		{"per 1,000 live births", 1000, true},
		{"Per 1,000,000 total population", 1000000, true},
		{"per10000", 10000, true},
		{"Cases among live births", 10000, true},
		{"total population", 0, false},
		{"", 0, false},
		{"per 0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			base, ok := ParseDenominatorBase(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, base)
		})
	}
}

func TestDeriveIncidence(t *testing.T) {
	raw := rawTable(t, "incidence", [][]string{
		{"GROUP", "CODE", "YEAR", "DISEASE", "DENOMINATOR", "INCIDENCE_RATE"},
		{"COUNTRIES", "AFG", "2019", "MEASLES", "per 1,000,000 total population", "25"},
		{"COUNTRIES", "AFG", "2019", "NTETANUS", "per 1,000 live births", "0.5"},
		{"COUNTRIES", "AFG", "2019", "OTHER", "unknown unit", "3"},
		{"COUNTRIES", "AFG", "2019", "POLIO", "per 100,000", ""},
	})

	cleaned, _ := Clean(raw, RulesFor(domain.DatasetIncidence))
	out := DeriveIncidence(cleaned)

	require.True(t, out.Has(DenomBaseColumn))
	require.True(t, out.Has(IncidencePer100kColumn))
	assert.False(t, cleaned.Has(DenomBaseColumn))

	assert.InDelta(t, 2.5, mustFloat(t, out.Get(0, IncidencePer100kColumn)), 1e-9)
	assert.InDelta(t, 50.0, mustFloat(t, out.Get(1, IncidencePer100kColumn)), 1e-9)

	// undefined base keeps the row but yields no rate
	assert.Equal(t, 4, out.Len())
	assert.True(t, out.Get(2, DenomBaseColumn).IsMissing())
	assert.True(t, out.Get(2, IncidencePer100kColumn).IsMissing())
	assert.True(t, out.Get(3, IncidencePer100kColumn).IsMissing())
	assert.Equal(t, 100000.0, mustFloat(t, out.Get(3, DenomBaseColumn)))
}

func TestDeriveIncidence_MissingDenominator(t *testing.T) {
	tbl := table.New("incidence", []string{"code", "year", "denominator", "incidence_rate"})
	tbl.Append(table.String("AFG"), table.Int(2019), table.Missing(), table.Float(1))

	out := DeriveIncidence(tbl)
	assert.True(t, out.Get(0, IncidencePer100kColumn).IsMissing())
}

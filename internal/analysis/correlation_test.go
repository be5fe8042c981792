package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcli/pkg/contracts/domain"
)

func TestCorrelate(t *testing.T) {
	res := Correlate(ScopeOverall, "x", "y", []float64{1, 2, 3, 4, 5}, []float64{2, 1, 4, 3, 5}, 0)

	require.True(t, res.Defined)
	assert.Equal(t, 5, res.N)
	assert.InDelta(t, 0.8, res.PearsonR, 1e-9)
	assert.InDelta(t, 0.104088, res.PearsonP, 1e-5)
	assert.InDelta(t, 0.8, res.SpearmanR, 1e-9)
	assert.Empty(t, res.Reason)
}

func TestCorrelate_PerfectLinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{3, 5, 7, 9, 11, 13}

	res := Correlate(ScopeOverall, "x", "y", x, y, 5)
	require.True(t, res.Defined)
	assert.InDelta(t, 1.0, res.PearsonR, 1e-12)
	assert.InDelta(t, 0.0, res.PearsonP, 1e-12)
	assert.InDelta(t, 1.0, res.SpearmanR, 1e-12)
}

func TestCorrelate_SpearmanTies(t *testing.T) {
	res := Correlate(ScopeOverall, "x", "y", []float64{1, 2, 3, 4, 5, 6}, []float64{1, 3, 2, 2, 5, 6}, 5)
	require.True(t, res.Defined)
	assert.InDelta(t, 0.8116794499, res.SpearmanR, 1e-9)
}

func TestCorrelate_Undefined(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		x, y   []float64
		n      int
		reason string
	}{
		{"four pairs", []float64{1, 2, 3, 4}, []float64{4, 3, 2, 1}, 4, ReasonTooFewPairs},
		{"missing values drop pairs", []float64{1, 2, nan, 4, 5}, []float64{1, 2, 3, nan, 5}, 3, ReasonTooFewPairs},
		{"constant series", []float64{7, 7, 7, 7, 7}, []float64{1, 2, 3, 4, 5}, 5, ReasonConstant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Correlate(ScopeOverall, "x", "y", tt.x, tt.y, DefaultMinPairs)
			assert.False(t, res.Defined)
			assert.Equal(t, tt.n, res.N)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Zero(t, res.PearsonR)
			assert.Zero(t, res.SpearmanR)
		})
	}
}

func TestCorrelateSummary(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	var rows []domain.AggregatedSummary
	for i := 1; i <= 6; i++ {
		rows = append(rows, domain.AggregatedSummary{
			Code:                "C",
			Year:                2000 + i,
			AvgCoverage:         f(float64(50 + 5*i)),
			AvgIncidencePer100k: f(float64(100 - 10*i)),
		})
	}
	rows[0].TotalCases = f(10)

	got := CorrelateSummary(ScopeOverall, rows, 5)
	require.Len(t, got, 2)

	assert.Equal(t, "avg_incidence_per_100k", got[0].Y)
	assert.True(t, got[0].Defined)
	assert.InDelta(t, -1.0, got[0].PearsonR, 1e-12)

	assert.Equal(t, "total_cases", got[1].Y)
	assert.False(t, got[1].Defined)
	assert.Equal(t, 1, got[1].N)
}

func TestRank(t *testing.T) {
	assert.Equal(t, []float64{3, 1, 4.5, 2, 4.5}, rank([]float64{30, 10, 40, 20, 40}))
}

// Package analysis computes the exploratory statistics of the pipeline:
// correlations, dose drop-off, coverage outliers and per-disease trends.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"vaxcli/pkg/contracts/domain"
)

// DefaultMinPairs is the smallest number of complete pairs a correlation is computed on
const DefaultMinPairs = 5

// Reasons reported for undefined correlations
const (
	ReasonTooFewPairs = "too_few_pairs"
	ReasonConstant    = "constant_input"
)

// Scope of the correlations computed over the whole summary
const ScopeOverall = "overall"

// Correlate computes Pearson and Spearman coefficients with two-sided
// p-values over the pairs where both x[i] and y[i] are defined (not NaN).
func Correlate(scope, xName, yName string, x, y []float64, minPairs int) domain.CorrelationResult {
	if minPairs <= 0 {
		minPairs = DefaultMinPairs
	}
	res := domain.CorrelationResult{Scope: scope, X: xName, Y: yName}

	var xs, ys []float64
	for i := 0; i < len(x) && i < len(y); i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	res.N = len(xs)
	if res.N < minPairs {
		res.Reason = ReasonTooFewPairs
		return res
	}
	if isConstant(xs) || isConstant(ys) {
		res.Reason = ReasonConstant
		return res
	}

	res.PearsonR = stat.Correlation(xs, ys, nil)
	res.SpearmanR = stat.Correlation(rank(xs), rank(ys), nil)
	res.PearsonP = pValue(res.PearsonR, res.N)
	res.SpearmanP = pValue(res.SpearmanR, res.N)
	res.Defined = true
	return res
}

// CorrelateSummary correlates avg_coverage with avg_incidence_per_100k and
// with total_cases across the summary rows.
func CorrelateSummary(scope string, rows []domain.AggregatedSummary, minPairs int) []domain.CorrelationResult {
	coverage := make([]float64, len(rows))
	incidence := make([]float64, len(rows))
	cases := make([]float64, len(rows))
	for i, r := range rows {
		coverage[i] = orNaN(r.AvgCoverage)
		incidence[i] = orNaN(r.AvgIncidencePer100k)
		cases[i] = orNaN(r.TotalCases)
	}
	return []domain.CorrelationResult{
		Correlate(scope, "avg_coverage", "avg_incidence_per_100k", coverage, incidence, minPairs),
		Correlate(scope, "avg_coverage", "total_cases", coverage, cases, minPairs),
	}
}

// pValue is the two-sided p-value of r under the t-distribution with n-2 degrees of freedom
func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// rank assigns 1-based ranks, giving ties the average of their positions
func rank(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

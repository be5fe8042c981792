// Package aggregate builds the (code, year) summary that joins coverage,
// incidence and reported cases.
package aggregate

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Source columns read by Summarize
const (
	CodeColumn             = "code"
	YearColumn             = "year"
	CoverageColumn         = "coverage"
	DosesColumn            = "doses"
	TargetColumn           = "target_number"
	IncidencePer100kColumn = "incidence_per_100k"
	CasesColumn            = "cases"
)

// SummaryColumns is the column order of the exported summary table
var SummaryColumns = []string{
	"code", "year",
	"avg_coverage", "median_coverage", "coverage_count", "doses_sum", "target_sum",
	"avg_incidence_per_100k", "incidence_count", "incidence_rows",
	"total_cases",
}

// Key identifies one summary row
type Key struct {
	Code string
	Year int
}

type coverageGroup struct {
	coverage []float64
	doses    float64
	target   float64
}

type incidenceGroup struct {
	values []float64
	rows   int
}

// Summarize groups each source by (code, year) and outer-joins the groups.
// Any source may be nil. Rows with a missing code or year are not grouped.
func Summarize(coverage, incidence, reported *table.Table) ([]domain.AggregatedSummary, error) {
	if err := requireColumns(coverage, CoverageColumn, DosesColumn, TargetColumn); err != nil {
		return nil, err
	}
	if err := requireColumns(incidence, IncidencePer100kColumn); err != nil {
		return nil, err
	}
	if err := requireColumns(reported, CasesColumn); err != nil {
		return nil, err
	}

	rows := make(map[Key]*domain.AggregatedSummary)
	entry := func(k Key) *domain.AggregatedSummary {
		s, ok := rows[k]
		if !ok {
			s = &domain.AggregatedSummary{Code: k.Code, Year: k.Year}
			rows[k] = s
		}
		return s
	}

	for k, g := range groupCoverage(coverage) {
		s := entry(k)
		count := len(g.coverage)
		doses, target := g.doses, g.target
		s.CoverageCount = &count
		s.DosesSum = &doses
		s.TargetSum = &target
		if count > 0 {
			avg := stat.Mean(g.coverage, nil)
			med := Median(g.coverage)
			s.AvgCoverage = &avg
			s.MedianCoverage = &med
		}
	}

	for k, g := range groupIncidence(incidence) {
		s := entry(k)
		count, n := len(g.values), g.rows
		s.IncidenceCount = &count
		s.IncidenceRows = &n
		if count > 0 {
			avg := stat.Mean(g.values, nil)
			s.AvgIncidencePer100k = &avg
		}
	}

	for k, total := range sumColumn(reported, CasesColumn) {
		s := entry(k)
		v := total
		s.TotalCases = &v
	}

	out := make([]domain.AggregatedSummary, 0, len(rows))
	for _, s := range rows {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}

func requireColumns(t *table.Table, columns ...string) error {
	if t == nil {
		return nil
	}
	required := append([]string{CodeColumn, YearColumn}, columns...)
	if missing := t.MissingColumns(required...); len(missing) > 0 {
		return apperrors.NewMissingKeyError(t.Name, missing)
	}
	return nil
}

// KeyOf returns the grouping key of row r
func KeyOf(t *table.Table, r int) (Key, bool) {
	code := t.Get(r, CodeColumn)
	year, ok := t.Get(r, YearColumn).Int64()
	if !ok || code.IsMissing() {
		return Key{}, false
	}
	return Key{Code: code.Text(), Year: int(year)}, true
}

func groupCoverage(t *table.Table) map[Key]*coverageGroup {
	groups := make(map[Key]*coverageGroup)
	if t == nil {
		return groups
	}
	for r := range t.Rows {
		k, ok := KeyOf(t, r)
		if !ok {
			continue
		}
		g, found := groups[k]
		if !found {
			g = &coverageGroup{}
			groups[k] = g
		}
		if v, ok := t.Get(r, CoverageColumn).Float64(); ok {
			g.coverage = append(g.coverage, v)
		}
		if v, ok := t.Get(r, DosesColumn).Float64(); ok {
			g.doses += v
		}
		if v, ok := t.Get(r, TargetColumn).Float64(); ok {
			g.target += v
		}
	}
	return groups
}

func groupIncidence(t *table.Table) map[Key]*incidenceGroup {
	groups := make(map[Key]*incidenceGroup)
	if t == nil {
		return groups
	}
	for r := range t.Rows {
		k, ok := KeyOf(t, r)
		if !ok {
			continue
		}
		g, found := groups[k]
		if !found {
			g = &incidenceGroup{}
			groups[k] = g
		}
		g.rows++
		if v, ok := t.Get(r, IncidencePer100kColumn).Float64(); ok {
			g.values = append(g.values, v)
		}
	}
	return groups
}

func sumColumn(t *table.Table, column string) map[Key]float64 {
	sums := make(map[Key]float64)
	if t == nil {
		return sums
	}
	for r := range t.Rows {
		k, ok := KeyOf(t, r)
		if !ok {
			continue
		}
		v, _ := t.Get(r, column).Float64()
		sums[k] += v
	}
	return sums
}

// Median returns the middle value, or the mean of the two middle values
// for an even count. values must be non-empty.
func Median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ToTable renders summaries with nil fields as missing values
func ToTable(name string, summaries []domain.AggregatedSummary) *table.Table {
	t := table.New(name, SummaryColumns)
	for _, s := range summaries {
		t.Append(
			table.String(s.Code),
			table.Int(int64(s.Year)),
			floatValue(s.AvgCoverage),
			floatValue(s.MedianCoverage),
			intValue(s.CoverageCount),
			floatValue(s.DosesSum),
			floatValue(s.TargetSum),
			floatValue(s.AvgIncidencePer100k),
			intValue(s.IncidenceCount),
			intValue(s.IncidenceRows),
			floatValue(s.TotalCases),
		)
	}
	return t
}

// FromTable parses a summary table written by ToTable
func FromTable(t *table.Table) ([]domain.AggregatedSummary, error) {
	if missing := t.MissingColumns(CodeColumn, YearColumn); len(missing) > 0 {
		return nil, apperrors.NewMissingKeyError(t.Name, missing)
	}
	out := make([]domain.AggregatedSummary, 0, t.Len())
	for r := range t.Rows {
		k, ok := KeyOf(t, r)
		if !ok {
			continue
		}
		out = append(out, domain.AggregatedSummary{
			Code:                k.Code,
			Year:                k.Year,
			AvgCoverage:         floatPtr(t.Get(r, "avg_coverage")),
			MedianCoverage:      floatPtr(t.Get(r, "median_coverage")),
			CoverageCount:       intPtr(t.Get(r, "coverage_count")),
			DosesSum:            floatPtr(t.Get(r, "doses_sum")),
			TargetSum:           floatPtr(t.Get(r, "target_sum")),
			AvgIncidencePer100k: floatPtr(t.Get(r, "avg_incidence_per_100k")),
			IncidenceCount:      intPtr(t.Get(r, "incidence_count")),
			IncidenceRows:       intPtr(t.Get(r, "incidence_rows")),
			TotalCases:          floatPtr(t.Get(r, "total_cases")),
		})
	}
	return out, nil
}

func floatValue(p *float64) table.Value {
	if p == nil {
		return table.Missing()
	}
	return table.Float(*p)
}

func intValue(p *int) table.Value {
	if p == nil {
		return table.Missing()
	}
	return table.Int(int64(*p))
}

func floatPtr(v table.Value) *float64 {
	f, ok := v.Float64()
	if !ok {
		return nil
	}
	return &f
}

func intPtr(v table.Value) *int {
	i, ok := v.Int64()
	if !ok {
		return nil
	}
	n := int(i)
	return &n
}

// String formats a key for logs
func (k Key) String() string {
	return k.Code + "/" + strconv.Itoa(k.Year)
}

package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"vaxcli/internal/aggregate"
	"vaxcli/internal/cleaning"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Country ranking groups
const (
	GroupLowest  = "lowest"
	GroupHighest = "highest"
)

// CoverageOutliers returns the flagged coverage rows ordered by coverage
// descending, at most limit rows (limit <= 0 keeps all).
func CoverageOutliers(coverage *table.Table, limit int) *table.Table {
	flagged := coverage.Filter(func(r int) bool {
		return coverage.Get(r, cleaning.CoverageFlagColumn).Text() == cleaning.FlagOutlier
	})
	c := flagged.Col(aggregate.CoverageColumn)
	if c < 0 {
		return flagged
	}
	sort.SliceStable(flagged.Rows, func(i, j int) bool {
		a, okA := flagged.Rows[i][c].Float64()
		b, okB := flagged.Rows[j][c].Float64()
		if okA != okB {
			return okA
		}
		return a > b
	})
	if limit > 0 && flagged.Len() > limit {
		flagged.Rows = flagged.Rows[:limit]
	}
	return flagged
}

// CoverageByYear returns the mean coverage of every year with at least one value
func CoverageByYear(coverage *table.Table) []domain.YearCoverage {
	byYear := make(map[int][]float64)
	for r := range coverage.Rows {
		year, ok := coverage.Get(r, aggregate.YearColumn).Int64()
		if !ok {
			continue
		}
		if v, ok := coverage.Get(r, aggregate.CoverageColumn).Float64(); ok {
			byYear[int(year)] = append(byYear[int(year)], v)
		}
	}
	out := make([]domain.YearCoverage, 0, len(byYear))
	for year, vs := range byYear {
		out = append(out, domain.YearCoverage{Year: year, MeanCoverage: stat.Mean(vs, nil), Rows: len(vs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// RankCountries orders entities by mean coverage over all years and returns
// the n lowest followed by the n highest. Ranks are 1-based in ascending order.
func RankCountries(coverage *table.Table, n int) []domain.CountryCoverage {
	byCode := make(map[string][]float64)
	for r := range coverage.Rows {
		code := coverage.Get(r, aggregate.CodeColumn)
		if code.IsMissing() {
			continue
		}
		if v, ok := coverage.Get(r, aggregate.CoverageColumn).Float64(); ok {
			byCode[code.Text()] = append(byCode[code.Text()], v)
		}
	}
	ranked := make([]domain.CountryCoverage, 0, len(byCode))
	for code, vs := range byCode {
		ranked = append(ranked, domain.CountryCoverage{Code: code, MeanCoverage: stat.Mean(vs, nil)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MeanCoverage != ranked[j].MeanCoverage {
			return ranked[i].MeanCoverage < ranked[j].MeanCoverage
		}
		return ranked[i].Code < ranked[j].Code
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	out := make([]domain.CountryCoverage, 0, 2*n)
	for _, c := range ranked[:n] {
		c.Group = GroupLowest
		out = append(out, c)
	}
	for _, c := range ranked[len(ranked)-n:] {
		c.Group = GroupHighest
		out = append(out, c)
	}
	return out
}

package table

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ColumnProfile describes one column of a table
type ColumnProfile struct {
	Name     string
	Type     string
	Missing  int
	Distinct int
	Numeric  *NumericSummary
}

// NumericSummary mirrors a describe() row for a numeric column
type NumericSummary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Profile is a quick structural summary of a table
type Profile struct {
	Name    string
	Rows    int
	Columns []ColumnProfile
}

// Describe profiles every column. A column is numeric when all of its
// non-missing values convert to numbers.
func Describe(t *Table) Profile {
	p := Profile{Name: t.Name, Rows: t.Len()}
	for c, name := range t.Columns {
		cp := ColumnProfile{Name: name}
		distinct := make(map[string]struct{})
		var nums []float64
		numeric := true
		kinds := make(map[Kind]bool)
		for _, row := range t.Rows {
			var v Value
			if c < len(row) {
				v = row[c]
			}
			if v.IsMissing() {
				cp.Missing++
				continue
			}
			kinds[v.Kind()] = true
			distinct[v.Text()] = struct{}{}
			if f, ok := v.Float64(); ok {
				nums = append(nums, f)
			} else {
				numeric = false
			}
		}
		cp.Distinct = len(distinct)
		cp.Type = inferType(kinds, numeric && len(nums) > 0)
		if numeric && len(nums) > 0 {
			cp.Numeric = summarize(nums)
		}
		p.Columns = append(p.Columns, cp)
	}
	return p
}

func inferType(kinds map[Kind]bool, numeric bool) string {
	switch {
	case len(kinds) == 0:
		return "empty"
	case kinds[KindFloat]:
		return KindFloat.String()
	case kinds[KindInt] && !kinds[KindString]:
		return KindInt.String()
	case numeric:
		return "numeric"
	default:
		return KindString.String()
	}
}

func summarize(values []float64) *NumericSummary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s := &NumericSummary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		P25:   stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		P50:   stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		P75:   stat.Quantile(0.75, stat.LinInterp, sorted, nil),
	}
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

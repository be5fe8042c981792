package cleaning

import (
	"strings"

	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Report describes what Clean did. Rejected holds every excluded row with
// the reason it was excluded.
type Report struct {
	domain.CleaningSummary
	Rejected *table.Table
}

// Clean applies rules to t and returns a new table. The input is not modified.
// Clean is idempotent: cleaning its own output changes nothing.
func Clean(t *table.Table, rules Rules) (*table.Table, Report) {
	rep := Report{
		CleaningSummary: domain.CleaningSummary{
			Dataset:       rules.Dataset,
			InputRows:     t.Len(),
			Dropped:       make(map[string]int),
			ParseFailures: make(map[string]int),
		},
	}

	out := t.DropColumns(rules.DropColumns...).Rename(strings.ToLower)
	rep.Rejected = table.New(t.Name+"_rejected", append(append([]string(nil), out.Columns...), RejectReasonColumn))

	reject := func(src *table.Table, reason string, drop func(r int) bool) *table.Table {
		return src.Filter(func(r int) bool {
			if !drop(r) {
				return true
			}
			rep.Dropped[reason]++
			rep.Rejected.Append(append(append(table.Row(nil), src.Rows[r]...), table.String(reason))...)
			return false
		})
	}

	// year: present and integral, otherwise the row has no grouping key
	if out.Has(rules.YearColumn) {
		src := out
		out = reject(src, "missing_"+rules.YearColumn, func(r int) bool {
			_, ok := src.Get(r, rules.YearColumn).Float64()
			return !ok
		})
		src = out
		out = reject(src, "invalid_"+rules.YearColumn, func(r int) bool {
			_, ok := src.Get(r, rules.YearColumn).Integral()
			return !ok
		})
		src = out
		out = src.WithColumn(rules.YearColumn, func(r int) table.Value {
			y, _ := src.Get(r, rules.YearColumn).Integral()
			return table.Int(y)
		})
	}

	for _, col := range rules.Numeric {
		if !out.Has(col) {
			continue
		}
		src := out
		out = src.WithColumn(col, func(r int) table.Value {
			v, failed := coerceNumeric(src.Get(r, col))
			if failed {
				rep.ParseFailures[col]++
			}
			return v
		})
	}

	for _, col := range rules.NonNegative {
		if !out.Has(col) {
			continue
		}
		src := out
		out = reject(src, "negative_"+col, func(r int) bool {
			f, ok := src.Get(r, col).Float64()
			return ok && f < 0
		})
	}

	for _, col := range rules.DropMissing {
		if !out.Has(col) {
			continue
		}
		src := out
		out = reject(src, "missing_"+col, func(r int) bool {
			return src.Get(r, col).IsMissing()
		})
	}

	for _, col := range rules.Integer {
		if !out.Has(col) {
			continue
		}
		src := out
		out = src.WithColumn(col, func(r int) table.Value {
			v := src.Get(r, col)
			if i, ok := v.Int64(); ok {
				return table.Int(i)
			}
			return v
		})
	}

	if rules.FlagSource != "" && out.Has(rules.FlagSource) {
		src := out
		out = src.WithColumn(rules.FlagColumn, func(r int) table.Value {
			f, ok := src.Get(r, rules.FlagSource).Float64()
			if ok && (f < rules.FlagMin || f > rules.FlagMax) {
				rep.Flagged++
				return table.String(FlagOutlier)
			}
			return table.String(FlagOK)
		})
	}

	rep.OutputRows = out.Len()
	return out, rep
}

// coerceNumeric converts v to a number. Unparseable text becomes missing and
// is reported as a parse failure.
func coerceNumeric(v table.Value) (table.Value, bool) {
	switch v.Kind() {
	case table.KindMissing, table.KindInt, table.KindFloat:
		return v, false
	}
	f, ok := v.Float64()
	if !ok {
		return table.Missing(), true
	}
	return table.Float(f), false
}

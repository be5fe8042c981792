package analysis

import (
	"regexp"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"vaxcli/internal/aggregate"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// AntigenColumn holds antigen codes such as POL3 or DTPCV1
const AntigenColumn = "antigen"

var antigenDose = regexp.MustCompile(`^(.+?)(\d+)$`)

// SplitAntigen separates an antigen code into its family and dose number.
// ok is false when the code has no trailing dose digits.
func SplitAntigen(code string) (base string, dose int, ok bool) {
	m := antigenDose.FindStringSubmatch(code)
	if m == nil {
		return "", 0, false
	}
	dose, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], dose, true
}

type doseKey struct {
	code string
	year int
	base string
}

// DoseDropOff computes, per (code, year, antigen family), the mean coverage
// of each dose and the relative drop from dose 1 to the highest dose with
// coverage. DropPct is nil when dose 1 is absent or zero.
func DoseDropOff(coverage *table.Table) []domain.DoseDropOff {
	values := make(map[doseKey]map[int][]float64)
	for r := range coverage.Rows {
		k, ok := aggregate.KeyOf(coverage, r)
		if !ok {
			continue
		}
		base, dose, ok := SplitAntigen(coverage.Get(r, AntigenColumn).Text())
		if !ok {
			continue
		}
		v, ok := coverage.Get(r, aggregate.CoverageColumn).Float64()
		if !ok {
			continue
		}
		dk := doseKey{code: k.Code, year: k.Year, base: base}
		if values[dk] == nil {
			values[dk] = make(map[int][]float64)
		}
		values[dk][dose] = append(values[dk][dose], v)
	}

	out := make([]domain.DoseDropOff, 0, len(values))
	for k, doses := range values {
		d := domain.DoseDropOff{
			Code:         k.code,
			Year:         k.year,
			AntigenBase:  k.base,
			DoseCoverage: make(map[int]float64, len(doses)),
		}
		for dose, vs := range doses {
			d.DoseCoverage[dose] = stat.Mean(vs, nil)
			if dose > d.LastDose {
				d.LastDose = dose
			}
		}
		d.LastCoverage = d.DoseCoverage[d.LastDose]
		if first, ok := d.DoseCoverage[1]; ok {
			f := first
			d.FirstCoverage = &f
			if first != 0 {
				drop := (first - d.LastCoverage) / first
				d.DropPct = &drop
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.AntigenBase < b.AntigenBase
	})
	return out
}

// SummarizeDropOff aggregates defined drop-offs per antigen family
func SummarizeDropOff(drops []domain.DoseDropOff) []domain.AntigenDropOff {
	byBase := make(map[string][]float64)
	for _, d := range drops {
		if d.DropPct == nil {
			continue
		}
		byBase[d.AntigenBase] = append(byBase[d.AntigenBase], *d.DropPct)
	}
	out := make([]domain.AntigenDropOff, 0, len(byBase))
	for base, vs := range byBase {
		out = append(out, domain.AntigenDropOff{
			AntigenBase: base,
			Groups:      len(vs),
			MeanDrop:    stat.Mean(vs, nil),
			MedianDrop:  aggregate.Median(vs),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AntigenBase < out[j].AntigenBase })
	return out
}

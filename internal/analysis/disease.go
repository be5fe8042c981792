package analysis

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"vaxcli/internal/aggregate"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// DiseaseColumn holds the disease code of incidence and reported-case rows
const DiseaseColumn = "disease"

// Disease maps a disease of interest onto the codes used by the sources.
// Codes match the disease column of incidence and reported cases; Antigens
// are prefixes of the coverage antigen column.
type Disease struct {
	Name     string
	Codes    []string
	Antigens []string
}

var knownDiseases = map[string]Disease{
	"MEASLES":     {Name: "MEASLES", Codes: []string{"MEASLES"}, Antigens: []string{"MCV"}},
	"POLIO":       {Name: "POLIO", Codes: []string{"POLIO"}, Antigens: []string{"POL", "IPV"}},
	"HEPATITIS B": {Name: "HEPATITIS B", Codes: []string{"HEPATITIS B", "HEPB"}, Antigens: []string{"HEPB"}},
	"DTP": {
		Name:     "DTP",
		Codes:    []string{"DTP", "DIPHTHERIA", "PERTUSSIS", "TTETANUS", "NTETANUS"},
		Antigens: []string{"DTP", "DIPHCV"},
	},
	"INFLUENZA": {Name: "INFLUENZA", Codes: []string{"INFLUENZA"}, Antigens: []string{"FLU"}},
}

// ResolveDiseases returns the definitions for names. Unknown names match
// their own disease code and no coverage antigen.
func ResolveDiseases(names []string) []Disease {
	out := make([]Disease, 0, len(names))
	for _, n := range names {
		key := strings.ToUpper(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		if d, ok := knownDiseases[key]; ok {
			out = append(out, d)
			continue
		}
		out = append(out, Disease{Name: key, Codes: []string{key}})
	}
	return out
}

// Filter restricts the three sources to rows belonging to the disease.
// Nil tables stay nil.
func (d Disease) Filter(coverage, incidence, reported *table.Table) (cov, inc, rep *table.Table) {
	byCode := func(t *table.Table) *table.Table {
		if t == nil {
			return nil
		}
		return t.Filter(func(r int) bool {
			code := strings.ToUpper(strings.TrimSpace(t.Get(r, DiseaseColumn).Text()))
			for _, c := range d.Codes {
				if code == c {
					return true
				}
			}
			return false
		})
	}
	if coverage != nil {
		cov = coverage.Filter(func(r int) bool {
			antigen := strings.ToUpper(coverage.Get(r, AntigenColumn).Text())
			for _, a := range d.Antigens {
				if strings.HasPrefix(antigen, a) {
					return true
				}
			}
			return false
		})
	}
	return cov, byCode(incidence), byCode(reported)
}

// DiseaseTrends summarizes each disease by (code, year), then reduces the
// summary to one point per year and correlates coverage with the
// disease's incidence and cases.
func DiseaseTrends(coverage, incidence, reported *table.Table, diseases []Disease, minPairs int) ([]domain.DiseaseTrend, []domain.CorrelationResult, error) {
	var trends []domain.DiseaseTrend
	var correlations []domain.CorrelationResult
	for _, d := range diseases {
		cov, inc, rep := d.Filter(coverage, incidence, reported)
		rows, err := aggregate.Summarize(cov, inc, rep)
		if err != nil {
			return nil, nil, err
		}
		trends = append(trends, yearTrend(d.Name, rows)...)
		correlations = append(correlations, CorrelateSummary(d.Name, rows, minPairs)...)
	}
	return trends, correlations, nil
}

func yearTrend(disease string, rows []domain.AggregatedSummary) []domain.DiseaseTrend {
	type acc struct {
		coverage, incidence, cases []float64
		codes                      map[string]bool
	}
	byYear := make(map[int]*acc)
	for _, r := range rows {
		a, ok := byYear[r.Year]
		if !ok {
			a = &acc{codes: make(map[string]bool)}
			byYear[r.Year] = a
		}
		a.codes[r.Code] = true
		if r.AvgCoverage != nil {
			a.coverage = append(a.coverage, *r.AvgCoverage)
		}
		if r.AvgIncidencePer100k != nil {
			a.incidence = append(a.incidence, *r.AvgIncidencePer100k)
		}
		if r.TotalCases != nil {
			a.cases = append(a.cases, *r.TotalCases)
		}
	}

	out := make([]domain.DiseaseTrend, 0, len(byYear))
	for year, a := range byYear {
		t := domain.DiseaseTrend{
			Disease:             disease,
			Year:                year,
			AvgCoverage:         meanOrNil(a.coverage),
			AvgIncidencePer100k: meanOrNil(a.incidence),
			Countries:           len(a.codes),
		}
		if len(a.cases) > 0 {
			total := 0.0
			for _, c := range a.cases {
				total += c
			}
			t.TotalCases = &total
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func meanOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := stat.Mean(values, nil)
	return &m
}

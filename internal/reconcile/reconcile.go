// Package reconcile repairs vaccine codes of introduction records against the schedule.
package reconcile

import (
	"sort"
	"strings"

	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Key columns shared by introduction and schedule tables
const (
	ISOColumn     = "iso_3_code"
	YearColumn    = "year"
	CodeColumn    = "vaccinecode"
	introCodeName = "description"
)

// Remap records one vaccine-code substitution
type Remap struct {
	ISO  string `json:"iso_3_code"`
	Year int64  `json:"year"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Result reports reconciliation counts and the substitutions applied
type Result struct {
	domain.ReconcileSummary
	Remaps []Remap
}

type triple struct {
	iso  string
	year int64
	code string
}

type isoYear struct {
	iso  string
	year int64
}

// Reconcile returns the introduction rows whose (iso_3_code, year, vaccinecode)
// triple exists in schedule. Orphaned codes are first remapped to the
// lexicographically smallest schedule code for the same iso_3_code and year.
// This is a best-effort approximation, not a semantic match.
func Reconcile(intro, schedule *table.Table) (*table.Table, Result, error) {
	if !intro.Has(CodeColumn) && intro.Has(introCodeName) {
		intro = intro.Rename(func(c string) string {
			if c == introCodeName {
				return CodeColumn
			}
			return c
		})
	}
	for _, t := range []*table.Table{intro, schedule} {
		if missing := t.MissingColumns(ISOColumn, YearColumn, CodeColumn); len(missing) > 0 {
			return nil, Result{}, apperrors.NewMissingKeyError(t.Name, missing)
		}
	}

	intro = normalizeKeys(intro)
	schedule = normalizeKeys(schedule)

	valid := make(map[triple]bool)
	candidates := make(map[isoYear][]string)
	for r := range schedule.Rows {
		k, ok := keyOf(schedule, r)
		if !ok {
			continue
		}
		if !valid[k] {
			valid[k] = true
			iy := isoYear{k.iso, k.year}
			candidates[iy] = append(candidates[iy], k.code)
		}
	}
	for iy := range candidates {
		sort.Strings(candidates[iy])
	}

	res := Result{}
	res.Original = intro.Len()

	remap := make(map[triple]string)
	for r := range intro.Rows {
		k, ok := keyOf(intro, r)
		if ok && valid[k] {
			continue
		}
		res.Orphans++
		if !ok {
			continue
		}
		if _, seen := remap[k]; seen {
			continue
		}
		if codes := candidates[isoYear{k.iso, k.year}]; len(codes) > 0 {
			remap[k] = codes[0]
			res.Remaps = append(res.Remaps, Remap{ISO: k.iso, Year: k.year, From: k.code, To: codes[0]})
		}
	}

	remapped := intro.WithColumn(CodeColumn, func(r int) table.Value {
		k, ok := keyOf(intro, r)
		if !ok {
			return intro.Get(r, CodeColumn)
		}
		if to, found := remap[k]; found {
			res.Remapped++
			return table.String(to)
		}
		return intro.Get(r, CodeColumn)
	})

	out := remapped.Filter(func(r int) bool {
		k, ok := keyOf(remapped, r)
		return ok && valid[k]
	})

	res.Valid = out.Len()
	res.Removed = res.Original - res.Valid
	sort.Slice(res.Remaps, func(i, j int) bool {
		a, b := res.Remaps[i], res.Remaps[j]
		if a.ISO != b.ISO {
			return a.ISO < b.ISO
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.From < b.From
	})
	return out, res, nil
}

// normalizeKeys trims and uppercases iso_3_code and vaccinecode
func normalizeKeys(t *table.Table) *table.Table {
	out := t
	for _, col := range []string{ISOColumn, CodeColumn} {
		src := out
		out = src.WithColumn(col, func(r int) table.Value {
			v := src.Get(r, col)
			if v.IsMissing() {
				return v
			}
			s := strings.ToUpper(strings.TrimSpace(v.Text()))
			if s == "" {
				return table.Missing()
			}
			return table.String(s)
		})
	}
	return out
}

func keyOf(t *table.Table, r int) (triple, bool) {
	iso := t.Get(r, ISOColumn)
	code := t.Get(r, CodeColumn)
	year, ok := t.Get(r, YearColumn).Int64()
	if !ok || iso.IsMissing() || code.IsMissing() {
		return triple{}, false
	}
	return triple{iso: iso.Text(), year: year, code: code.Text()}, true
}

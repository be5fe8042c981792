package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

func rawTable(t *testing.T, name string, records [][]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords(name, records)
	require.NoError(t, err)
	return tbl
}

func rawCoverage(t *testing.T) *table.Table {
	return rawTable(t, "coverage", [][]string{
		{"GROUP", "CODE", "NAME", "YEAR", "ANTIGEN", "TARGET_NUMBER", "DOSES", "COVERAGE"},
		{"COUNTRIES", "AFG", "Afghanistan", "2019", "POL1", "1000", "900", "90"},
		{"COUNTRIES", "AFG", "Afghanistan", "", "POL2", "1000", "850", "85"},
		{"COUNTRIES", "AFG", "Afghanistan", "2019.0", "POL3", "1000", "600", "112"},
		{"COUNTRIES", "ALB", "Albania", "2019", "POL1", "-5", "10", "95"},
		{"COUNTRIES", "ALB", "Albania", "2020", "POL1", "abc", "-1", "95"},
		{"COUNTRIES", "ALB", "Albania", "twenty", "POL1", "10", "10", "95"},
		{"COUNTRIES", "BEN", "Benin", "2020", "POL1", "", "", "n/a"},
	})
}

func TestClean_Coverage(t *testing.T) {
	raw := rawCoverage(t)
	out, rep := Clean(raw, RulesFor(domain.DatasetCoverage))

	assert.Equal(t, []string{"code", "name", "year", "antigen", "target_number", "doses", "coverage", "coverage_flag"}, out.Columns)
	require.Equal(t, 3, out.Len())

	assert.Equal(t, 7, rep.InputRows)
	assert.Equal(t, 3, rep.OutputRows)
	assert.Equal(t, 2, rep.Dropped["missing_year"])
	assert.Equal(t, 1, rep.Dropped["negative_target_number"])
	assert.Equal(t, 1, rep.Dropped["negative_doses"])
	assert.Equal(t, 1, rep.ParseFailures["target_number"])
	assert.Equal(t, 1, rep.Flagged)

	assert.Equal(t, 4, rep.Rejected.Len())
	assert.Equal(t, RejectReasonColumn, rep.Rejected.Columns[len(rep.Rejected.Columns)-1])

	// year present and integer on every row
	for r := 0; r < out.Len(); r++ {
		assert.Equal(t, table.KindInt, out.Get(r, "year").Kind())
	}
	assert.Equal(t, int64(2019), mustInt(t, out.Get(1, "year")))

	assert.Equal(t, FlagOK, out.Get(0, "coverage_flag").Text())
	assert.Equal(t, FlagOutlier, out.Get(1, "coverage_flag").Text())
	assert.Equal(t, 112.0, mustFloat(t, out.Get(1, "coverage")), "outliers are kept")

	// missing numerics survive and are not parse failures
	assert.True(t, out.Get(2, "doses").IsMissing())
	assert.True(t, out.Get(2, "coverage").IsMissing())
	assert.Equal(t, FlagOK, out.Get(2, "coverage_flag").Text())

	// input untouched
	assert.Equal(t, 7, raw.Len())
	assert.True(t, raw.Has("GROUP"))
}

func TestClean_Idempotent(t *testing.T) {
	for _, spec := range []struct {
		ds  domain.Dataset
		tbl *table.Table
	}{
		{domain.DatasetCoverage, rawCoverage(t)},
		{domain.DatasetReportedCases, rawReported(t)},
	} {
		t.Run(string(spec.ds), func(t *testing.T) {
			once, _ := Clean(spec.tbl, RulesFor(spec.ds))
			twice, rep := Clean(once, RulesFor(spec.ds))

			assert.True(t, once.Equal(twice))
			assert.Equal(t, once.Len(), rep.InputRows)
			assert.Equal(t, once.Len(), rep.OutputRows)
			assert.Empty(t, rep.Dropped)
			assert.Empty(t, rep.ParseFailures)
		})
	}
}

func TestClean_IdempotentThroughCSV(t *testing.T) {
	once, _ := Clean(rawCoverage(t), RulesFor(domain.DatasetCoverage))

	reread, err := table.FromRecords("coverage", once.Records())
	require.NoError(t, err)

	twice, _ := Clean(reread, RulesFor(domain.DatasetCoverage))
	assert.Equal(t, once.Records(), twice.Records())
}

func TestClean_RejectsInvalidYears(t *testing.T) {
	tests := []struct {
		name string
		year string
	}{
		{"fractional", "2019.5"},
		{"negative fraction", "-0.5"},
		{"beyond int64", "1e19"},
		{"below int64", "-1e19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawTable(t, "coverage", [][]string{
				{"CODE", "YEAR", "ANTIGEN", "COVERAGE"},
				{"AFG", tt.year, "POL1", "90"},
				{"AFG", "2020", "POL1", "80"},
			})

			out, rep := Clean(raw, RulesFor(domain.DatasetCoverage))
			require.Equal(t, 1, out.Len())
			assert.Equal(t, int64(2020), mustInt(t, out.Get(0, "year")))
			assert.Equal(t, 1, rep.Dropped["invalid_year"])
			assert.Zero(t, rep.Dropped["missing_year"])
			require.Equal(t, 1, rep.Rejected.Len())
			assert.Equal(t, "invalid_year", rep.Rejected.Get(0, RejectReasonColumn).Text())
		})
	}
}

func rawReported(t *testing.T) *table.Table {
	return rawTable(t, "reported_cases", [][]string{
		{"GROUP", "CODE", "NAME", "YEAR", "DISEASE", "DISEASE_DESCRIPTION", "CASES"},
		{"COUNTRIES", "AFG", "Afghanistan", "2019", "MEASLES", "Measles", "120"},
		{"COUNTRIES", "AFG", "Afghanistan", "2019", "POLIO", "Polio", ""},
		{"COUNTRIES", "ALB", "Albania", "2019", "MEASLES", "Measles", "-3"},
		{"COUNTRIES", "ALB", "Albania", "2020", "MEASLES", "Measles", "7.9"},
	})
}

func TestClean_ReportedCasesDropPolicy(t *testing.T) {
	out, rep := Clean(rawReported(t), RulesFor(domain.DatasetReportedCases))

	require.Equal(t, 2, out.Len())
	assert.Equal(t, 1, rep.Dropped["missing_cases"])
	assert.Equal(t, 1, rep.Dropped["negative_cases"])

	for r := 0; r < out.Len(); r++ {
		assert.Equal(t, table.KindInt, out.Get(r, "cases").Kind())
	}
	assert.Equal(t, int64(7), mustInt(t, out.Get(1, "cases")))
	assert.False(t, out.Has("group"))
}

func TestClean_ScheduleDropsSourceComment(t *testing.T) {
	raw := rawTable(t, "vaccine_schedule", [][]string{
		{"ISO_3_CODE", "YEAR", "VACCINECODE", "SCHEDULEROUNDS", "SourceComment"},
		{"AFG", "2020", "BCG", "1", "note"},
		{"AFG", "2020", "DTP", "x", ""},
	})

	out, rep := Clean(raw, RulesFor(domain.DatasetVaccineSchedule))
	assert.Equal(t, []string{"iso_3_code", "year", "vaccinecode", "schedulerounds"}, out.Columns)
	assert.Equal(t, 1, rep.ParseFailures["schedulerounds"])
	assert.Equal(t, 2, out.Len())
}

func TestClean_IntroductionOnlyNormalizesYear(t *testing.T) {
	raw := rawTable(t, "vaccine_introduction", [][]string{
		{"ISO_3_CODE", "COUNTRYNAME", "WHO_REGION", "YEAR", "DESCRIPTION", "INTRO"},
		{"AFG", "Afghanistan", "EMRO", "2019", "HepB birth dose", "Yes"},
		{"AFG", "Afghanistan", "EMRO", "", "PCV", "No"},
	})

	out, rep := Clean(raw, RulesFor(domain.DatasetVaccineIntroduction))
	assert.Equal(t, 1, out.Len())
	assert.Equal(t, "HepB birth dose", out.Get(0, "description").Text())
	assert.Equal(t, 1, rep.Dropped["missing_year"])
}

func mustInt(t *testing.T, v table.Value) int64 {
	t.Helper()
	i, ok := v.Int64()
	require.True(t, ok)
	return i
}

func mustFloat(t *testing.T, v table.Value) float64 {
	t.Helper()
	f, ok := v.Float64()
	require.True(t, ok)
	return f
}

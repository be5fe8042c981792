package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcli/internal/table"
)

func TestResolveDiseases(t *testing.T) {
	got := ResolveDiseases([]string{"measles", " ", "Mumps"})
	require.Len(t, got, 2)
	assert.Equal(t, "MEASLES", got[0].Name)
	assert.Equal(t, []string{"MCV"}, got[0].Antigens)
	assert.Equal(t, Disease{Name: "MUMPS", Codes: []string{"MUMPS"}}, got[1])
}

func TestDiseaseTrends(t *testing.T) {
	cov := coverageRows(
		[]any{"AFG", 2019, "MCV1", 80.0},
		[]any{"AFG", 2019, "MCV2", 60.0},
		[]any{"BEN", 2019, "MCV1", 90.0},
		[]any{"AFG", 2019, "POL3", 10.0},
		[]any{"AFG", 2020, "MCV1", 85.0},
	)
	inc := table.New("incidence", []string{"code", "year", "disease", "incidence_per_100k"})
	inc.Append(table.String("AFG"), table.Int(2019), table.String("MEASLES"), table.Float(12))
	inc.Append(table.String("BEN"), table.Int(2019), table.String("measles"), table.Float(4))
	inc.Append(table.String("AFG"), table.Int(2019), table.String("POLIO"), table.Float(99))
	rep := table.New("reported_cases", []string{"code", "year", "disease", "cases"})
	rep.Append(table.String("AFG"), table.Int(2019), table.String("MEASLES"), table.Int(30))
	rep.Append(table.String("BEN"), table.Int(2019), table.String("MEASLES"), table.Int(5))

	trends, corr, err := DiseaseTrends(cov, inc, rep, ResolveDiseases([]string{"MEASLES"}), 5)
	require.NoError(t, err)

	require.Len(t, trends, 2)
	y2019 := trends[0]
	assert.Equal(t, "MEASLES", y2019.Disease)
	assert.Equal(t, 2019, y2019.Year)
	assert.Equal(t, 2, y2019.Countries)
	require.NotNil(t, y2019.AvgCoverage)
	assert.InDelta(t, 80.0, *y2019.AvgCoverage, 1e-9)
	assert.InDelta(t, 8.0, *y2019.AvgIncidencePer100k, 1e-9)
	assert.InDelta(t, 35.0, *y2019.TotalCases, 1e-9)

	y2020 := trends[1]
	assert.Nil(t, y2020.AvgIncidencePer100k)
	assert.Nil(t, y2020.TotalCases)

	require.Len(t, corr, 2)
	assert.Equal(t, "MEASLES", corr[0].Scope)
	assert.False(t, corr[0].Defined)
}

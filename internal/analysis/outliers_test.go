package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageOutliers(t *testing.T) {
	cov := coverageRows(
		[]any{"AFG", 2019, "BCG", 120.0, "outlier"},
		[]any{"AFG", 2019, "DTP1", 95.0},
		[]any{"BEN", 2019, "BCG", 250.0, "outlier"},
		[]any{"CAN", 2019, "BCG", -3.0, "outlier"},
	)

	all := CoverageOutliers(cov, 0)
	require.Equal(t, 3, all.Len())
	assert.Equal(t, "BEN", all.Get(0, "code").Text())
	assert.Equal(t, "AFG", all.Get(1, "code").Text())
	assert.Equal(t, "CAN", all.Get(2, "code").Text())

	top := CoverageOutliers(cov, 2)
	assert.Equal(t, 2, top.Len())
	assert.Equal(t, 4, cov.Len())
}

func TestCoverageByYear(t *testing.T) {
	cov := coverageRows(
		[]any{"AFG", 2020, "BCG", 80.0},
		[]any{"BEN", 2020, "BCG", 60.0},
		[]any{"AFG", 2019, "BCG", 90.0},
		[]any{"AFG", 2018, "BCG", nil},
	)

	got := CoverageByYear(cov)
	require.Len(t, got, 2)
	assert.Equal(t, 2019, got[0].Year)
	assert.InDelta(t, 90.0, got[0].MeanCoverage, 1e-9)
	assert.Equal(t, 2020, got[1].Year)
	assert.InDelta(t, 70.0, got[1].MeanCoverage, 1e-9)
	assert.Equal(t, 2, got[1].Rows)
}

func TestRankCountries(t *testing.T) {
	cov := coverageRows(
		[]any{"AFG", 2019, "BCG", 40.0},
		[]any{"AFG", 2020, "BCG", 60.0},
		[]any{"BEN", 2019, "BCG", 70.0},
		[]any{"CAN", 2019, "BCG", 95.0},
		[]any{"DNK", 2019, "BCG", 90.0},
	)

	got := RankCountries(cov, 2)
	require.Len(t, got, 4)

	assert.Equal(t, "AFG", got[0].Code)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, GroupLowest, got[0].Group)
	assert.InDelta(t, 50.0, got[0].MeanCoverage, 1e-9)
	assert.Equal(t, "BEN", got[1].Code)

	assert.Equal(t, "DNK", got[2].Code)
	assert.Equal(t, GroupHighest, got[2].Group)
	assert.Equal(t, "CAN", got[3].Code)
	assert.Equal(t, 4, got[3].Rank)

	assert.Len(t, RankCountries(cov, 10), 8)
}

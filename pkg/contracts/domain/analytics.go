package domain

// AggregatedSummary is one (code, year) row of the outer-joined aggregates.
// Pointer fields are nil when the source table had no row for the key.
type AggregatedSummary struct {
	Code string `json:"code"`
	Year int    `json:"year"`

	AvgCoverage    *float64 `json:"avg_coverage"`
	MedianCoverage *float64 `json:"median_coverage"`
	CoverageCount  *int     `json:"coverage_count"`
	DosesSum       *float64 `json:"doses_sum"`
	TargetSum      *float64 `json:"target_sum"`

	AvgIncidencePer100k *float64 `json:"avg_incidence_per_100k"`
	IncidenceCount      *int     `json:"incidence_count"`
	IncidenceRows       *int     `json:"incidence_rows"`

	TotalCases *float64 `json:"total_cases"`
}

// CorrelationResult holds Pearson and Spearman statistics for one metric pair.
// When Defined is false the coefficients are not meaningful and are omitted from output.
type CorrelationResult struct {
	Scope     string  `json:"scope"`
	X         string  `json:"x"`
	Y         string  `json:"y"`
	N         int     `json:"n"`
	Defined   bool    `json:"defined"`
	Reason    string  `json:"reason,omitempty"`
	PearsonR  float64 `json:"pearson_r,omitempty"`
	PearsonP  float64 `json:"pearson_p,omitempty"`
	SpearmanR float64 `json:"spearman_r,omitempty"`
	SpearmanP float64 `json:"spearman_p,omitempty"`
}

// DoseDropOff is the coverage loss between dose 1 and the last reported dose
// of one antigen family for one (code, year).
type DoseDropOff struct {
	Code          string          `json:"code"`
	Year          int             `json:"year"`
	AntigenBase   string          `json:"antigen_base"`
	DoseCoverage  map[int]float64 `json:"dose_coverage"`
	LastDose      int             `json:"last_dose"`
	FirstCoverage *float64        `json:"first_coverage"`
	LastCoverage  float64         `json:"last_coverage"`
	DropPct       *float64        `json:"drop_pct"`
}

// AntigenDropOff summarizes drop-off over all groups of one antigen family
type AntigenDropOff struct {
	AntigenBase string  `json:"antigen_base"`
	Groups      int     `json:"groups"`
	MeanDrop    float64 `json:"mean_drop"`
	MedianDrop  float64 `json:"median_drop"`
}

// YearCoverage is the mean coverage over all rows of one year
type YearCoverage struct {
	Year         int     `json:"year"`
	MeanCoverage float64 `json:"mean_coverage"`
	Rows         int     `json:"rows"`
}

// CountryCoverage is the mean coverage of one entity over all years
type CountryCoverage struct {
	Code         string  `json:"code"`
	MeanCoverage float64 `json:"mean_coverage"`
	Rank         int     `json:"rank"`
	Group        string  `json:"group"`
}

// DiseaseTrend is one (disease, year) point combining incidence, cases and coverage
type DiseaseTrend struct {
	Disease             string   `json:"disease"`
	Year                int      `json:"year"`
	AvgCoverage         *float64 `json:"avg_coverage"`
	AvgIncidencePer100k *float64 `json:"avg_incidence_per_100k"`
	TotalCases          *float64 `json:"total_cases"`
	Countries           int      `json:"countries"`
}

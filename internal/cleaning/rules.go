// Package cleaning normalizes raw dataset tables.
package cleaning

import (
	"vaxcli/pkg/contracts/domain"
)

// Rules configures Clean for one dataset. Column names other than
// DropColumns refer to the lowercased names.
type Rules struct {
	Dataset     domain.Dataset
	DropColumns []string
	YearColumn  string
	Numeric     []string
	NonNegative []string
	DropMissing []string
	Integer     []string

	// Range flag; FlagSource empty disables flagging
	FlagSource string
	FlagColumn string
	FlagMin    float64
	FlagMax    float64
}

// Flag values written to FlagColumn
const (
	FlagOK      = "ok"
	FlagOutlier = "outlier"
)

// RejectReasonColumn holds why a row was excluded in Report.Rejected
const RejectReasonColumn = "reason"

// CoverageFlagColumn is the range flag derived for coverage rows
const CoverageFlagColumn = "coverage_flag"

// RulesFor returns the cleaning rules of a dataset.
// Reported cases use the drop policy for missing counts.
func RulesFor(ds domain.Dataset) Rules {
	r := Rules{Dataset: ds, YearColumn: "year"}
	switch ds {
	case domain.DatasetCoverage:
		r.DropColumns = []string{"GROUP"}
		r.Numeric = []string{"target_number", "doses", "coverage"}
		r.NonNegative = []string{"doses", "target_number"}
		r.FlagSource = "coverage"
		r.FlagColumn = CoverageFlagColumn
		r.FlagMin = 0
		r.FlagMax = 100
	case domain.DatasetIncidence:
		r.DropColumns = []string{"GROUP"}
		r.Numeric = []string{"incidence_rate"}
	case domain.DatasetReportedCases:
		r.DropColumns = []string{"GROUP"}
		r.Numeric = []string{"cases"}
		r.NonNegative = []string{"cases"}
		r.DropMissing = []string{"cases"}
		r.Integer = []string{"cases"}
	case domain.DatasetVaccineSchedule:
		r.DropColumns = []string{"SOURCECOMMENT"}
		r.Numeric = []string{"schedulerounds"}
	}
	return r
}

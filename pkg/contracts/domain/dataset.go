package domain

// Dataset identifies one of the five source tables
type Dataset string

const (
	DatasetCoverage            Dataset = "coverage"
	DatasetIncidence           Dataset = "incidence"
	DatasetReportedCases       Dataset = "reported_cases"
	DatasetVaccineIntroduction Dataset = "vaccine_introduction"
	DatasetVaccineSchedule     Dataset = "vaccine_schedule"
)

// ReconciledIntroductionFile is the processed file holding introductions
// whose (iso_3_code, year, vaccinecode) triple exists in the schedule.
const ReconciledIntroductionFile = "vaccine_introduction_cleaned.csv"

// DatasetSpec describes the raw shape of a source spreadsheet.
// Raw column names are matched case-sensitively; processed names are lowercase.
type DatasetSpec struct {
	Dataset  Dataset
	RawFile  string
	Required []string
	Optional []string
}

// ProcessedFile returns the normalized CSV file name for the dataset
func (d Dataset) ProcessedFile() string {
	return string(d) + ".csv"
}

// Datasets lists the sources in pipeline order
var Datasets = []DatasetSpec{
	{
		Dataset: DatasetCoverage,
		RawFile: "coverage.xlsx",
		Required: []string{"CODE", "NAME", "YEAR", "ANTIGEN", "ANTIGEN_DESCRIPTION",
			"COVERAGE_CATEGORY", "COVERAGE_CATEGORY_DESCRIPTION", "TARGET_NUMBER", "DOSES", "COVERAGE"},
		Optional: []string{"GROUP"},
	},
	{
		Dataset: DatasetIncidence,
		RawFile: "incidence.xlsx",
		Required: []string{"CODE", "NAME", "YEAR", "DISEASE", "DISEASE_DESCRIPTION",
			"DENOMINATOR", "INCIDENCE_RATE"},
		Optional: []string{"GROUP"},
	},
	{
		Dataset:  DatasetReportedCases,
		RawFile:  "reported_cases.xlsx",
		Required: []string{"CODE", "NAME", "YEAR", "DISEASE", "DISEASE_DESCRIPTION", "CASES"},
		Optional: []string{"GROUP"},
	},
	{
		Dataset:  DatasetVaccineIntroduction,
		RawFile:  "vaccine_introduction.xlsx",
		Required: []string{"ISO_3_CODE", "COUNTRYNAME", "WHO_REGION", "YEAR", "DESCRIPTION", "INTRO"},
	},
	{
		Dataset: DatasetVaccineSchedule,
		RawFile: "vaccine_schedule.xlsx",
		Required: []string{"ISO_3_CODE", "COUNTRYNAME", "WHO_REGION", "YEAR", "VACCINECODE",
			"VACCINE_DESCRIPTION", "SCHEDULEROUNDS", "TARGETPOP", "TARGETPOP_DESCRIPTION",
			"GEOAREA", "AGEADMINISTERED"},
		Optional: []string{"SOURCECOMMENT"},
	},
}

// LookupDataset returns the DatasetSpec for a dataset name
func LookupDataset(name string) (DatasetSpec, bool) {
	for _, spec := range Datasets {
		if string(spec.Dataset) == name {
			return spec, true
		}
	}
	return DatasetSpec{}, false
}

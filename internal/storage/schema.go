package storage

import (
	"fmt"
	"strings"

	"vaxcli/pkg/contracts/domain"
)

// ColumnType is the SQL type family of a column
type ColumnType int

const (
	Varchar ColumnType = iota
	Integer
	Float
)

// Column is one column of a store table. Length applies to Varchar only.
type Column struct {
	Name   string
	Type   ColumnType
	Length int
}

// Schema is the fixed layout of one entity table
type Schema struct {
	Dataset domain.Dataset
	Columns []Column
}

// Name returns the table name
func (s Schema) Name() string { return string(s.Dataset) }

// Column returns the named column
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func str(name string, n int) Column { return Column{Name: name, Type: Varchar, Length: n} }
func num(name string) Column        { return Column{Name: name, Type: Float} }
func whole(name string) Column      { return Column{Name: name, Type: Integer} }

// Schemas lists the entity tables in load order
var Schemas = []Schema{
	{Dataset: domain.DatasetCoverage, Columns: []Column{
		str("code", 20), str("name", 255), whole("year"), str("antigen", 50),
		str("antigen_description", 255), str("coverage_category", 50),
		str("coverage_category_description", 255), num("target_number"), num("doses"), num("coverage"),
	}},
	{Dataset: domain.DatasetIncidence, Columns: []Column{
		str("code", 20), str("name", 255), whole("year"), str("disease", 50),
		str("disease_description", 255), str("denominator", 50), num("incidence_rate"),
	}},
	{Dataset: domain.DatasetReportedCases, Columns: []Column{
		str("code", 20), str("name", 255), whole("year"), str("disease", 50),
		str("disease_description", 255), whole("cases"),
	}},
	{Dataset: domain.DatasetVaccineIntroduction, Columns: []Column{
		str("iso_3_code", 20), str("countryname", 255), str("who_region", 50), whole("year"),
		str("description", 255), str("intro", 50),
	}},
	{Dataset: domain.DatasetVaccineSchedule, Columns: []Column{
		str("iso_3_code", 20), str("countryname", 255), str("who_region", 50), whole("year"),
		str("vaccinecode", 50), str("vaccine_description", 255), num("schedulerounds"),
		str("targetpop", 50), str("targetpop_description", 255), str("geoarea", 50), str("ageadministered", 50),
	}},
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for the dialect
func (s Schema) CreateTableSQL(d Dialect) string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = d.Quote(c.Name) + " " + c.sqlType()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", d.Quote(s.Name()), strings.Join(defs, ",\n\t"))
}

func (c Column) sqlType() string {
	switch c.Type {
	case Integer:
		return "INT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	}
}

package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/internal/validation"
	"vaxcli/pkg/contracts/domain"
)

// ExcelSource reads datasets from .xlsx workbooks in a directory
type ExcelSource struct {
	Dir string
}

// NewExcelSource creates a source reading from dir
func NewExcelSource(dir string) *ExcelSource {
	return &ExcelSource{Dir: dir}
}

// Name identifies the source in logs
func (s *ExcelSource) Name() string { return "excel" }

// Check verifies that the directory holds a workbook for every dataset
func (s *ExcelSource) Check() error {
	return validation.NewFileValidator(nil).ValidateWorkbooks(s.Dir, domain.Datasets)
}

// Read loads the first worksheet of the dataset's workbook
func (s *ExcelSource) Read(ctx context.Context, spec domain.DatasetSpec) (*table.Table, error) {
	return ReadWorkbook(filepath.Join(s.Dir, spec.RawFile), string(spec.Dataset))
}

// ReadWorkbook reads the first worksheet of an .xlsx file into a table.
// Cells are read unformatted so numbers keep their stored precision.
func ReadWorkbook(path, name string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewInputError(fmt.Sprintf("%s has no worksheets", path), nil)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to read sheet %q of %s", sheets[0], path), err)
	}

	t, err := table.FromRecords(name, rows)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to parse %s", path), err)
	}
	return t, nil
}

// Package validation checks pipeline input files before a step reads them.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "vaxcli/internal/errors"
	"vaxcli/pkg/contracts/domain"
)

// FileValidator provides the file checks shared by the pipeline steps
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return apperrors.NewInputError(fmt.Sprintf("input directory %s does not exist", dir), nil)
	}
	if err != nil {
		return apperrors.NewInputError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		return apperrors.NewInputError(fmt.Sprintf("%s is not a directory", dir), nil)
	}
	return nil
}

// ValidateFile checks that path is an existing, readable regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.NewInputError(fmt.Sprintf("file %s does not exist", path), nil)
	}
	if err != nil {
		return apperrors.NewInputError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewInputError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewInputError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable .xlsx workbook and not an
// Office lock file
func (v *FileValidator) ValidateExcelFile(path string) error {
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewInputError(fmt.Sprintf("file %s is a temporary Excel file", path), nil)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return apperrors.NewInputError(fmt.Sprintf("file %s is not an .xlsx workbook (extension: %s)", path, ext), nil)
	}
	return v.ValidateFile(path)
}

// ValidateCSVFile checks that path is a readable .csv file
func (v *FileValidator) ValidateCSVFile(path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return apperrors.NewInputError(fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext), nil)
	}
	return v.ValidateFile(path)
}

// ValidateWorkbooks checks that dir holds the workbook of every dataset.
// All problems are collected into one error.
func (v *FileValidator) ValidateWorkbooks(dir string, specs []domain.DatasetSpec) error {
	if err := v.ValidateInputDirectory(dir); err != nil {
		return err
	}

	var missing []string
	for _, spec := range specs {
		if err := v.ValidateExcelFile(filepath.Join(dir, spec.RawFile)); err != nil {
			missing = append(missing, spec.RawFile)
		}
	}
	if len(missing) > 0 {
		v.logger.Error("Raw workbooks missing",
			slog.String("directory", dir),
			slog.Any("files", missing))
		return apperrors.NewInputError(fmt.Sprintf("raw workbooks missing in %s: %s", dir, strings.Join(missing, ", ")), nil).
			WithContext("missing", missing)
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(specs)))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"stablebin/domain/binning"
	"stablebin/domain/core"
)

// DataReader loads a flat observation table from an Excel or CSV file. The
// first row is the header; one column carries the binary label and one the
// cohort identifier; every remaining column is a feature (numeric if all of
// its values parse as numbers, categorical otherwise).
type DataReader struct {
	filePath  string
	fileType  string // "xlsx" or "csv"
	labelCol  string
	cohortCol string
}

// NewDataReader creates a reader for both Excel and CSV files.
func NewDataReader(filePath, labelCol, cohortCol string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, labelCol: labelCol, cohortCol: cohortCol}
}

// Read loads the file into a Dataset.
func (r *DataReader) Read(_ context.Context) (*binning.Dataset, error) {
	log.Printf("[DataReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	return r.toDataset(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func (r *DataReader) toDataset(rows [][]string) (*binning.Dataset, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file has no data rows")
	}
	header := rows[0]
	data := rows[1:]

	labelIdx, cohortIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case r.labelCol:
			labelIdx = i
		case r.cohortCol:
			cohortIdx = i
		}
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("label column %q not found in header", r.labelCol)
	}
	if cohortIdx < 0 {
		return nil, fmt.Errorf("cohort column %q not found in header", r.cohortCol)
	}

	ds := &binning.Dataset{
		Numeric:     make(map[core.FeatureKey][]float64),
		Categorical: make(map[core.FeatureKey][]string),
		Labels:      make([]int, 0, len(data)),
		Cohorts:     make([]string, 0, len(data)),
	}

	cell := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	for n, row := range data {
		label, err := strconv.Atoi(cell(row, labelIdx))
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("row %d: label %q is not binary", n+2, cell(row, labelIdx))
		}
		ds.Labels = append(ds.Labels, label)
		ds.Cohorts = append(ds.Cohorts, cell(row, cohortIdx))
	}

	for i, h := range header {
		if i == labelIdx || i == cohortIdx {
			continue
		}
		key := core.FeatureKey(strings.TrimSpace(h))
		if key == "" {
			continue
		}

		raw := make([]string, len(data))
		numeric := true
		values := make([]float64, len(data))
		for n, row := range data {
			raw[n] = cell(row, i)
			if numeric {
				v, err := strconv.ParseFloat(raw[n], 64)
				if err != nil {
					numeric = false
				} else {
					values[n] = v
				}
			}
		}
		if numeric {
			ds.Numeric[key] = values
		} else {
			ds.Categorical[key] = raw
		}
	}

	log.Printf("[DataReader] loaded %d rows, %d numeric + %d categorical feature(s)",
		ds.Len(), len(ds.Numeric), len(ds.Categorical))
	return ds, nil
}

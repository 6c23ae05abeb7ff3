package processor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"stock-app/services"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFile = errors.New("unsupported intake file type")

// Columns are matched by header name, case-insensitively, so files may
// order them freely. item_name, supplier_vendor and quantity are required.
const (
	colItemName     = "item_name"
	colBarcode      = "barcode"
	colSupplier     = "supplier_vendor"
	colQuantity     = "quantity"
	colUnitCost     = "unit_cost"
	colReceivedDate = "received_date"
	colDepartment   = "department"
	colCategoryID   = "category_id"
	colParLevel     = "par_level"
	colNotes        = "notes"
)

var requiredColumns = []string{colItemName, colSupplier, colQuantity}

// Supported reports whether the file extension can be imported.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Parse reads intake rows from a .csv or .xlsx stream.
func Parse(name string, r io.Reader) ([]services.ImportRow, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return toRows(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func toRows(records [][]string) ([]services.ImportRow, error) {
	if len(records) == 0 {
		return nil, errors.New("file is empty")
	}

	index := map[string]int{}
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []services.ImportRow
	for i, record := range records[1:] {
		line := i + 2
		get := func(col string) string {
			pos, ok := index[col]
			if !ok || pos >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[pos])
		}
		if isBlank(record) {
			continue
		}

		req := services.IntakeRequest{
			ItemName:       get(colItemName),
			Barcode:        get(colBarcode),
			SupplierVendor: get(colSupplier),
			ReceivedDate:   get(colReceivedDate),
			Notes:          get(colNotes),
		}

		qty, err := strconv.Atoi(get(colQuantity))
		if err != nil {
			return nil, fmt.Errorf("line %d: quantity %q is not a number", line, get(colQuantity))
		}
		req.Quantity = qty

		if raw := get(colUnitCost); raw != "" {
			if req.UnitCost, err = decimal.NewFromString(raw); err != nil {
				return nil, fmt.Errorf("line %d: unit_cost %q is not a number", line, raw)
			}
		}
		if raw := get(colCategoryID); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: category_id %q is not a number", line, raw)
			}
			categoryID := uint(id)
			req.CategoryID = &categoryID
		}
		if raw := get(colParLevel); raw != "" {
			par, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: par_level %q is not a number", line, raw)
			}
			req.ParLevel = &par
		}

		rows = append(rows, services.ImportRow{Line: line, Department: get(colDepartment), Request: req})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

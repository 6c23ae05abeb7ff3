package report

import (
	"fmt"
	"io"
	"stock-app/models"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slices"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Sheet1"
	dateLayout  = "2006-01-02 15:04:05"
)

// Workbook is a single-sheet spreadsheet with a bold header row.
type Workbook struct {
	file *excelize.File
	row  int
}

func NewWorkbook(headers ...string) (*Workbook, error) {
	f := excelize.NewFile()
	w := &Workbook{file: f, row: 1}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := w.Append(toCells(headers)...); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return nil, err
	}
	return w, nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// Append writes the next row.
func (w *Workbook) Append(values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	defer w.file.Close()
	return w.file.WriteTo(out)
}

// Stock builds the stock list export.
func Stock(items []models.StockItem) (*Workbook, error) {
	w, err := NewWorkbook("ID", "Name", "Barcode", "Category", "Department", "Supplier",
		"Unit Cost", "Quantity", "Par Level", "Below Par", "Faulty Qty", "Status", "Age (days)", "Created At")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		category := ""
		if item.Category != nil {
			category = item.Category.Name
		}
		department := fmt.Sprint(item.DepartmentID)
		if item.Department != nil {
			department = item.Department.Name
		}
		err := w.Append(item.ID, item.Name, item.Barcode, category, department, item.SupplierVendor,
			item.UnitCost.StringFixed(2), item.Quantity, item.ParLevel, yesNo(item.BelowPar),
			item.FaultyQuantity, item.Status, item.AgeInDays, item.CreatedAt.Format(dateLayout))
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

// AuditLogs builds the audit export.
func AuditLogs(logs []models.AuditLog) (*Workbook, error) {
	w, err := NewWorkbook("ID", "Timestamp", "Action", "Item", "Item ID", "User ID",
		"Department ID", "Performed By", "Reason", "Details")
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		err := w.Append(l.ID.String(), l.Timestamp.Format(dateLayout), l.Action, l.StockItemName,
			optional(l.StockItemID), optional(l.UserID), optional(l.DepartmentID),
			l.PerformedByName, l.Reason, details(l))
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

// IntakeLogs builds the intake history export.
func IntakeLogs(logs []models.StockIntakeLog) (*Workbook, error) {
	w, err := NewWorkbook("ID", "Received Date", "Item", "Item ID", "Barcode", "Supplier",
		"Quantity", "Unit Cost", "Total Cost", "Department ID", "New Item", "Notes")
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		err := w.Append(l.ID.String(), l.ReceivedDate.Format("2006-01-02"), l.ItemName, l.ItemID,
			l.Barcode, l.SupplierVendor, l.Quantity, l.UnitCost.StringFixed(2),
			l.TotalCost.StringFixed(2), l.DepartmentID, yesNo(l.IsNewItem), l.Notes)
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func optional(v *uint) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func details(l models.AuditLog) string {
	if len(l.Details) == 0 {
		return ""
	}
	parts := make([]string, 0, len(l.Details))
	for k, v := range l.Details {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"stock-app/types"
	"stock-app/utils"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IntakeService struct {
	db       *gorm.DB
	audit    *AuditTrail
	log      *zap.Logger
	tenantID uint
}

func NewIntakeService(db *gorm.DB, audit *AuditTrail, log *zap.Logger, tenantID uint) *IntakeService {
	return &IntakeService{db: db, audit: audit, log: log, tenantID: tenantID}
}

type IntakeRequest struct {
	ItemName       string          `json:"item_name" validate:"required,max=200"`
	Barcode        string          `json:"barcode" validate:"max=64"`
	CategoryID     *uint           `json:"category_id"`
	SupplierVendor string          `json:"supplier_vendor" validate:"required,max=200"`
	Quantity       int             `json:"quantity" validate:"gt=0"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ReceivedDate   string          `json:"received_date"`
	DepartmentID   *uint           `json:"department_id"`
	ParLevel       *int            `json:"par_level" validate:"omitempty,min=0"`
	Notes          string          `json:"notes" validate:"max=500"`
}

type IntakeResult struct {
	IntakeID  types.SnowflakeID `json:"intake_id"`
	ItemID    uint              `json:"item_id"`
	IsNewItem bool              `json:"is_new_item"`
	TotalCost decimal.Decimal   `json:"total_cost"`
	Quantity  int               `json:"quantity"`
	Message   string            `json:"message"`
}

type BarcodeLookup struct {
	Found bool                `json:"found"`
	Data  *models.BarcodeItem `json:"data"`
}

func (s *IntakeService) LookupBarcode(ctx context.Context, code string) (*BarcodeLookup, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("barcode is required", map[string]string{"barcode": "required"})
	}
	item, err := repositories.NewBarcodeRepository(s.db.WithContext(ctx)).FindByBarcode(code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &BarcodeLookup{Found: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &BarcodeLookup{Found: true, Data: item}, nil
}

// normalize trims the request and checks what the struct tags cannot.
func (req *IntakeRequest) normalize(actor Actor) (time.Time, error) {
	req.ItemName = strings.TrimSpace(req.ItemName)
	req.Barcode = strings.TrimSpace(req.Barcode)
	req.SupplierVendor = strings.TrimSpace(req.SupplierVendor)
	req.Notes = strings.TrimSpace(req.Notes)
	// Stored in a two-decimal column, so the total is built from the stored value.
	req.UnitCost = req.UnitCost.Round(2)

	fields := map[string]string{}
	if req.ItemName == "" {
		fields["item_name"] = "required"
	}
	if req.SupplierVendor == "" {
		fields["supplier_vendor"] = "required"
	}
	if req.Quantity <= 0 {
		fields["quantity"] = "gt=0"
	}
	if req.UnitCost.IsNegative() {
		fields["unit_cost"] = "min=0"
	}
	if req.ParLevel != nil && *req.ParLevel < 0 {
		fields["par_level"] = "min=0"
	}
	if req.DepartmentID == nil {
		if actor.DepartmentID == nil {
			fields["department_id"] = "required"
		} else {
			req.DepartmentID = uintPtr(*actor.DepartmentID)
		}
	}

	received := now()
	if req.ReceivedDate != "" {
		t, err := utils.ParseDate(req.ReceivedDate)
		if err != nil {
			fields["received_date"] = "date"
		} else {
			received = t.UTC()
		}
	}

	if len(fields) > 0 {
		return time.Time{}, apperror.Validation("invalid intake request", fields)
	}
	return received, nil
}

// Intake records received stock: it tops up a matching item in the
// department or creates a new one, and logs the receipt.
func (s *IntakeService) Intake(ctx context.Context, actor Actor, req IntakeRequest) (*IntakeResult, error) {
	var result *IntakeResult
	var entry *models.AuditLog

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		result, entry, err = s.intake(tx, actor, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Publish(entry)
	return result, nil
}

func (s *IntakeService) intake(tx *gorm.DB, actor Actor, req IntakeRequest) (*IntakeResult, *models.AuditLog, error) {
	received, err := req.normalize(actor)
	if err != nil {
		return nil, nil, err
	}
	departmentID := *req.DepartmentID

	if _, err := repositories.NewDepartmentRepository(tx).GetByID(departmentID); err != nil {
		return nil, nil, apperror.Wrap(err, "department")
	}
	var category *models.StockCategory
	if req.CategoryID != nil {
		if category, err = repositories.NewCategoryRepository(tx).GetByID(*req.CategoryID); err != nil {
			return nil, nil, apperror.Wrap(err, "category")
		}
	}

	totalCost := req.UnitCost.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)
	stockRepo := repositories.NewStockRepository(tx)

	var item *models.StockItem
	isNew := false
	existing, err := stockRepo.FindMatch(departmentID, req.Barcode, req.ItemName)
	switch {
	case err == nil:
		if item, err = applyIncrement(tx, existing.ID, req.Quantity, actor.ID); err != nil {
			return nil, nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		parLevel := 0
		if req.ParLevel != nil {
			parLevel = *req.ParLevel
		} else if category != nil {
			parLevel = category.DefaultParLevel
		}
		item = &models.StockItem{
			Name:           req.ItemName,
			Barcode:        req.Barcode,
			CategoryID:     req.CategoryID,
			SupplierVendor: req.SupplierVendor,
			UnitCost:       req.UnitCost,
			Quantity:       req.Quantity,
			ParLevel:       parLevel,
			DepartmentID:   departmentID,
			Status:         models.StockStatusAvailable,
			CreatedBy:      actor.ID,
			UpdatedBy:      actor.ID,
		}
		if err := stockRepo.Create(item); err != nil {
			return nil, nil, err
		}
		isNew = true
	default:
		return nil, nil, err
	}

	if err := registerBarcode(tx, req, category); err != nil {
		return nil, nil, err
	}

	logRow := &models.StockIntakeLog{
		ItemID:         item.ID,
		ItemName:       item.Name,
		Barcode:        req.Barcode,
		CategoryID:     req.CategoryID,
		SupplierVendor: req.SupplierVendor,
		Quantity:       req.Quantity,
		UnitCost:       req.UnitCost,
		TotalCost:      totalCost,
		ReceivedDate:   received,
		DepartmentID:   departmentID,
		ReceivedByID:   actor.ID,
		IsNewItem:      isNew,
		Notes:          req.Notes,
	}
	if err := repositories.NewIntakeRepository(tx).Create(logRow); err != nil {
		return nil, nil, err
	}

	entry, err := s.audit.Write(tx, actor, models.AuditLog{
		Action:        models.AuditActionAddStock,
		Reason:        req.Notes,
		StockItemID:   uintPtr(item.ID),
		StockItemName: item.Name,
		DepartmentID:  uintPtr(departmentID),
		Details: datatypes.JSONMap{
			"intake_id":       logRow.ID.String(),
			"quantity":        req.Quantity,
			"unit_cost":       req.UnitCost.StringFixed(2),
			"total_cost":      totalCost.StringFixed(2),
			"supplier_vendor": req.SupplierVendor,
			"is_new_item":     isNew,
			"quantity_after":  item.Quantity,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	message := "Stock quantity updated successfully"
	if isNew {
		message = "New item created and added to inventory"
	}
	return &IntakeResult{
		IntakeID:  logRow.ID,
		ItemID:    item.ID,
		IsNewItem: isNew,
		TotalCost: totalCost,
		Quantity:  item.Quantity,
		Message:   message,
	}, entry, nil
}

// registerBarcode adds an unseen barcode to the lookup catalog.
func registerBarcode(tx *gorm.DB, req IntakeRequest, category *models.StockCategory) error {
	if req.Barcode == "" {
		return nil
	}
	repo := repositories.NewBarcodeRepository(tx)
	_, err := repo.FindByBarcode(req.Barcode)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	catalog := &models.BarcodeItem{
		Barcode:        req.Barcode,
		Name:           req.ItemName,
		CategoryID:     req.CategoryID,
		SupplierVendor: req.SupplierVendor,
		UnitCost:       req.UnitCost,
	}
	if category != nil {
		catalog.CategoryName = category.Name
	}
	return repo.Create(catalog)
}

func (s *IntakeService) ListLogs(ctx context.Context, f repositories.IntakeFilter, page, perPage int) (utils.Page[models.StockIntakeLog], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	list, total, err := repositories.NewIntakeRepository(s.db.WithContext(ctx)).List(f, page, perPage)
	if err != nil {
		return utils.Page[models.StockIntakeLog]{}, err
	}
	return utils.NewPage(list, total, page, perPage), nil
}

func (s *IntakeService) ListAll(ctx context.Context, f repositories.IntakeFilter) ([]models.StockIntakeLog, error) {
	return repositories.NewIntakeRepository(s.db.WithContext(ctx)).ListAll(f, ExportLimit)
}

// ImportRow is one line of a bulk intake file. Department is matched by
// name within the tenant; an empty value falls back to the importer's
// department.
type ImportRow struct {
	Line       int
	Department string
	Request    IntakeRequest
}

type ImportResult struct {
	Filename string             `json:"filename"`
	Skipped  bool               `json:"skipped"`
	Rows     int                `json:"rows"`
	Results  []IntakeResult     `json:"results"`
	Logs     []*models.AuditLog `json:"-"`
}

// Import runs every row through intake in a single transaction. A file
// name that was imported before is skipped; any bad row aborts the file.
func (s *IntakeService) Import(ctx context.Context, actor Actor, filename string, rows []ImportRow) (*ImportResult, error) {
	name := filepath.Base(filename)
	result := &ImportResult{Filename: name}

	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repositories.NewIntakeRepository(tx)
		seen, err := repo.ImportedBefore(name)
		if err != nil {
			return err
		}
		if seen {
			result.Skipped = true
			return nil
		}

		departments := repositories.NewDepartmentRepository(tx)
		for _, row := range rows {
			req := row.Request
			if dept := strings.TrimSpace(row.Department); dept != "" {
				d, err := departments.GetByName(s.tenantID, dept)
				if err != nil {
					return fmt.Errorf("line %d: %w", row.Line, apperror.Wrap(err, "department "+dept))
				}
				req.DepartmentID = uintPtr(d.ID)
			}

			res, entry, err := s.intake(tx, actor, req)
			if err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			result.Results = append(result.Results, *res)
			result.Logs = append(result.Logs, entry)
		}
		result.Rows = len(rows)

		return repo.RecordImport(&models.ImportFile{Filename: name, Rows: len(rows), ImportedAt: now()})
	})
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		s.log.Warn("intake file already imported, skipping", zap.String("filename", name))
		return result, nil
	}
	for _, entry := range result.Logs {
		s.audit.Publish(entry)
	}
	s.log.Info("intake file imported", zap.String("filename", name), zap.Int("rows", result.Rows))
	return result, nil
}

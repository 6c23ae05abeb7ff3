package repositories

import (
	"errors"
	"stock-app/models"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository struct {
	DB *gorm.DB
}

func NewStockRepository(DB *gorm.DB) *StockRepository {
	return &StockRepository{DB: DB}
}

type StockFilter struct {
	DepartmentID *uint
	CategoryID   *uint
	Status       string
	BelowPar     *bool
	Search       string
}

func (r *StockRepository) List(f StockFilter) ([]models.StockItem, error) {
	q := r.DB.Model(&models.StockItem{}).Preload("Category")
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	} else {
		q = q.Where("status <> ?", models.StockStatusDeleted)
	}
	if f.BelowPar != nil {
		q = q.Where("below_par = ?", *f.BelowPar)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR barcode = ?", like, s)
	}

	var items []models.StockItem
	err := q.Order("name asc, id asc").Find(&items).Error
	return items, err
}

func (r *StockRepository) GetByID(id uint) (*models.StockItem, error) {
	var item models.StockItem
	err := r.DB.Preload("Category").First(&item, id).Error
	return &item, err
}

// FindMatch looks for a usable item in the department with the same
// barcode or, failing that, the same name ignoring case.
func (r *StockRepository) FindMatch(departmentID uint, barcode, name string) (*models.StockItem, error) {
	usable := func() *gorm.DB {
		return r.DB.Where("department_id = ? AND status NOT IN ?", departmentID,
			[]string{models.StockStatusDeleted, models.StockStatusFaulty})
	}

	var item models.StockItem
	if barcode = strings.TrimSpace(barcode); barcode != "" {
		err := usable().Where("barcode = ?", barcode).Order("id asc").First(&item).Error
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return &item, err
		}
	}
	err := usable().Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).Order("id asc").First(&item).Error
	return &item, err
}

func (r *StockRepository) Create(item *models.StockItem) error {
	return r.DB.Omit(clause.Associations).Create(item).Error
}

func (r *StockRepository) Save(item *models.StockItem) error {
	return r.DB.Omit(clause.Associations).Save(item).Error
}

// DecrementAvailable removes n units only while the item is available and
// holds at least n. The returned count is zero when the condition failed.
func (r *StockRepository) DecrementAvailable(id uint, n int) (int64, error) {
	res := r.DB.Model(&models.StockItem{}).
		Where("id = ? AND status = ? AND quantity >= ?", id, models.StockStatusAvailable, n).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", n))
	return res.RowsAffected, res.Error
}

// Increment adds n units to a non-deleted, non-faulty item.
func (r *StockRepository) Increment(id uint, n int) (int64, error) {
	res := r.DB.Model(&models.StockItem{}).
		Where("id = ? AND status NOT IN ?", id, []string{models.StockStatusDeleted, models.StockStatusFaulty}).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", n))
	return res.RowsAffected, res.Error
}

func (r *StockRepository) IncrementFaulty(id uint) error {
	return r.DB.Model(&models.StockItem{}).Where("id = ?", id).
		UpdateColumn("faulty_quantity", gorm.Expr("faulty_quantity + 1")).Error
}

// Refresh reloads the item after an atomic column update and brings the
// derived fields back in line: below_par and the assigned/available status.
// Only an assignment that takes the last unit marks the item assigned.
func (r *StockRepository) Refresh(id uint, actorID uint, viaAssignment bool) (*models.StockItem, error) {
	item, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	status := item.Status
	switch {
	case viaAssignment && item.Status == models.StockStatusAvailable && item.Quantity == 0:
		status = models.StockStatusAssigned
	case item.Status == models.StockStatusAssigned && item.Quantity > 0:
		status = models.StockStatusAvailable
	}
	belowPar := item.Quantity < item.ParLevel

	if status != item.Status || belowPar != item.BelowPar {
		err := r.DB.Model(&models.StockItem{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
			"status":     status,
			"below_par":  belowPar,
			"updated_by": actorID,
		}).Error
		if err != nil {
			return nil, err
		}
		item.Status = status
		item.BelowPar = belowPar
	}
	return item, nil
}

func (r *StockRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.StockItem{}).
		Where("category_id = ? AND status <> ?", categoryID, models.StockStatusDeleted).
		Count(&count).Error
	return count, err
}

// ListFaulty returns items marked faulty or carrying faulty units.
func (r *StockRepository) ListFaulty(departmentID *uint) ([]models.StockItem, error) {
	q := r.DB.Preload("Category").
		Where("status <> ?", models.StockStatusDeleted).
		Where("status = ? OR faulty_quantity > 0", models.StockStatusFaulty)
	if departmentID != nil {
		q = q.Where("department_id = ?", *departmentID)
	}
	var items []models.StockItem
	err := q.Order("name asc").Find(&items).Error
	return items, err
}

// DetachCategory clears the category of soft-deleted items so the
// category row can be removed.
func (r *StockRepository) DetachCategory(categoryID uint) error {
	return r.DB.Model(&models.StockItem{}).
		Where("category_id = ? AND status = ?", categoryID, models.StockStatusDeleted).
		UpdateColumn("category_id", nil).Error
}

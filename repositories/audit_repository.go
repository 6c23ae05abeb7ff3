package repositories

import (
	"stock-app/models"
	"stock-app/utils"

	"gorm.io/gorm"
)

type AuditRepository struct {
	DB *gorm.DB
}

func NewAuditRepository(DB *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: DB}
}

type AuditFilter struct {
	StockItemID   *uint
	UserID        *uint
	DepartmentID  *uint
	PerformedByID *uint
	Action        string
}

// Create is the only write path for audit rows.
func (r *AuditRepository) Create(entry *models.AuditLog) error {
	return r.DB.Create(entry).Error
}

func (r *AuditRepository) filtered(f AuditFilter) *gorm.DB {
	q := r.DB.Model(&models.AuditLog{})
	if f.StockItemID != nil {
		q = q.Where("stock_item_id = ?", *f.StockItemID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	if f.PerformedByID != nil {
		q = q.Where("performed_by_id = ?", *f.PerformedByID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	return q.Session(&gorm.Session{})
}

func (r *AuditRepository) List(f AuditFilter, page, perPage int) ([]models.AuditLog, int64, error) {
	q := r.filtered(f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := q.Order("timestamp desc, id desc").Scopes(utils.Paginate(page, perPage)).Find(&logs).Error
	return logs, total, err
}

func (r *AuditRepository) ListAll(f AuditFilter, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.filtered(f).Order("timestamp desc, id desc").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *AuditRepository) Count(f AuditFilter) (int64, error) {
	var total int64
	err := r.filtered(f).Count(&total).Error
	return total, err
}

package repositories

import (
	"stock-app/models"
	"stock-app/types"
	"stock-app/utils"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(DB *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: DB}
}

type AssignmentFilter struct {
	UserID      *uint
	StockItemID *uint
	Status      string
}

func (r *AssignmentRepository) Create(a *models.Assignment) error {
	return r.DB.Create(a).Error
}

func (r *AssignmentRepository) GetByID(id uint) (*models.Assignment, error) {
	var a models.Assignment
	err := r.DB.Preload("StockItem").First(&a, id).Error
	return &a, err
}

func (r *AssignmentRepository) Save(a *models.Assignment) error {
	return r.DB.Omit(clause.Associations).Save(a).Error
}

func (r *AssignmentRepository) ListForUser(userID uint) ([]models.Assignment, error) {
	var list []models.Assignment
	err := r.DB.Preload("StockItem.Category").
		Where("user_id = ?", userID).
		Order("assigned_at desc, id desc").
		Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) List(f AssignmentFilter, page, perPage int) ([]models.Assignment, int64, error) {
	q := r.DB.Model(&models.Assignment{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.StockItemID != nil {
		q = q.Where("stock_item_id = ?", *f.StockItemID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Assignment
	err := q.Preload("StockItem").Preload("User").
		Order("assigned_at desc, id desc").
		Scopes(utils.Paginate(page, perPage)).
		Find(&list).Error
	return list, total, err
}

type TransferRepository struct {
	DB *gorm.DB
}

func NewTransferRepository(DB *gorm.DB) *TransferRepository {
	return &TransferRepository{DB: DB}
}

type TransferFilter struct {
	Status           string
	FromDepartmentID *uint
	ToDepartmentID   *uint
	StockItemID      *uint
}

func (r *TransferRepository) Create(t *models.StockTransfer) error {
	return r.DB.Create(t).Error
}

func (r *TransferRepository) GetByID(id types.SnowflakeID) (*models.StockTransfer, error) {
	var t models.StockTransfer
	err := r.DB.Where("id = ?", id).First(&t).Error
	return &t, err
}

func (r *TransferRepository) Save(t *models.StockTransfer) error {
	return r.DB.Save(t).Error
}

// MarkDecided moves a pending transfer to its final state; zero rows means
// someone else decided it first.
func (r *TransferRepository) MarkDecided(id types.SnowflakeID, values map[string]interface{}) (int64, error) {
	res := r.DB.Model(&models.StockTransfer{}).
		Where("id = ? AND status = ?", id, models.TransferStatusPending).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *TransferRepository) List(f TransferFilter, page, perPage int) ([]models.StockTransfer, int64, error) {
	q := r.DB.Model(&models.StockTransfer{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FromDepartmentID != nil {
		q = q.Where("from_department_id = ?", *f.FromDepartmentID)
	}
	if f.ToDepartmentID != nil {
		q = q.Where("to_department_id = ?", *f.ToDepartmentID)
	}
	if f.StockItemID != nil {
		q = q.Where("stock_item_id = ?", *f.StockItemID)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.StockTransfer
	err := q.Order("created_at desc, id desc").Scopes(utils.Paginate(page, perPage)).Find(&list).Error
	return list, total, err
}

type IntakeRepository struct {
	DB *gorm.DB
}

func NewIntakeRepository(DB *gorm.DB) *IntakeRepository {
	return &IntakeRepository{DB: DB}
}

type IntakeFilter struct {
	Supplier     string
	DepartmentID *uint
	DateFrom     *time.Time
	DateTo       *time.Time
}

func (r *IntakeRepository) Create(l *models.StockIntakeLog) error {
	return r.DB.Create(l).Error
}

func (r *IntakeRepository) filtered(f IntakeFilter) *gorm.DB {
	q := r.DB.Model(&models.StockIntakeLog{})
	if f.Supplier != "" {
		q = q.Where("LOWER(supplier_vendor) LIKE ?", utils.ContainsPattern(f.Supplier))
	}
	if f.DepartmentID != nil {
		q = q.Where("department_id = ?", *f.DepartmentID)
	}
	if f.DateFrom != nil {
		q = q.Where("received_date >= ?", utils.StartOfDay(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("received_date < ?", utils.StartOfDay(*f.DateTo).AddDate(0, 0, 1))
	}
	return q.Session(&gorm.Session{})
}

func (r *IntakeRepository) List(f IntakeFilter, page, perPage int) ([]models.StockIntakeLog, int64, error) {
	q := r.filtered(f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.StockIntakeLog
	err := q.Order("received_date desc, id desc").Scopes(utils.Paginate(page, perPage)).Find(&list).Error
	return list, total, err
}

// ListAll returns up to limit rows for exports.
func (r *IntakeRepository) ListAll(f IntakeFilter, limit int) ([]models.StockIntakeLog, error) {
	var list []models.StockIntakeLog
	err := r.filtered(f).Order("received_date desc, id desc").Limit(limit).Find(&list).Error
	return list, err
}

func (r *IntakeRepository) ImportedBefore(filename string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.ImportFile{}).Where("filename = ?", filename).Count(&count).Error
	return count > 0, err
}

func (r *IntakeRepository) RecordImport(f *models.ImportFile) error {
	return r.DB.Create(f).Error
}

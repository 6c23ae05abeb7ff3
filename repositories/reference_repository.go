package repositories

import (
	"stock-app/models"

	"gorm.io/gorm"
)

type DepartmentRepository struct {
	DB *gorm.DB
}

func NewDepartmentRepository(DB *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{DB: DB}
}

func (r *DepartmentRepository) List(tenantID uint) ([]models.Department, error) {
	var departments []models.Department
	err := r.DB.Where("tenant_id = ?", tenantID).Order("name asc").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(id uint) (*models.Department, error) {
	var department models.Department
	err := r.DB.First(&department, id).Error
	return &department, err
}

func (r *DepartmentRepository) GetByName(tenantID uint, name string) (*models.Department, error) {
	var department models.Department
	err := r.DB.Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name).First(&department).Error
	return &department, err
}

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(DB *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: DB}
}

func (r *CategoryRepository) List() ([]models.StockCategory, error) {
	var categories []models.StockCategory
	err := r.DB.Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByID(id uint) (*models.StockCategory, error) {
	var category models.StockCategory
	err := r.DB.First(&category, id).Error
	return &category, err
}

// NameTaken reports whether another category already uses name.
func (r *CategoryRepository) NameTaken(name string, exceptID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.StockCategory{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *CategoryRepository) Create(category *models.StockCategory) error {
	return r.DB.Create(category).Error
}

func (r *CategoryRepository) Save(category *models.StockCategory) error {
	return r.DB.Save(category).Error
}

func (r *CategoryRepository) Delete(id uint) error {
	return r.DB.Delete(&models.StockCategory{}, id).Error
}

type BarcodeRepository struct {
	DB *gorm.DB
}

func NewBarcodeRepository(DB *gorm.DB) *BarcodeRepository {
	return &BarcodeRepository{DB: DB}
}

func (r *BarcodeRepository) FindByBarcode(code string) (*models.BarcodeItem, error) {
	var item models.BarcodeItem
	err := r.DB.Where("barcode = ?", code).First(&item).Error
	return &item, err
}

func (r *BarcodeRepository) Create(item *models.BarcodeItem) error {
	return r.DB.Create(item).Error
}

package services

import (
	"context"
	"stock-app/apperror"
	"stock-app/models"
	"stock-app/repositories"
	"strings"

	"gorm.io/gorm"
)

type DepartmentService struct {
	db       *gorm.DB
	tenantID uint
}

func NewDepartmentService(db *gorm.DB, tenantID uint) *DepartmentService {
	return &DepartmentService{db: db, tenantID: tenantID}
}

func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	return repositories.NewDepartmentRepository(s.db.WithContext(ctx)).List(s.tenantID)
}

// CategoryService manages stock categories. Categories are reference data
// and changes to them are not audited.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

type CategoryRequest struct {
	Name               string `json:"name" validate:"required,max=100"`
	DefaultParLevel    int    `json:"default_par_level" validate:"min=1"`
	AgingThresholdDays int    `json:"aging_threshold_days" validate:"min=1"`
	Color              string `json:"color" validate:"max=20"`
}

func (req *CategoryRequest) check() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if req.DefaultParLevel < 1 {
		fields["default_par_level"] = "min=1"
	}
	if req.AgingThresholdDays < 1 {
		fields["aging_threshold_days"] = "min=1"
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid category", fields)
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.StockCategory, error) {
	return repositories.NewCategoryRepository(s.db.WithContext(ctx)).List()
}

func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*models.StockCategory, error) {
	if err := req.check(); err != nil {
		return nil, err
	}

	category := &models.StockCategory{
		Name:               req.Name,
		DefaultParLevel:    req.DefaultParLevel,
		AgingThresholdDays: req.AgingThresholdDays,
		Color:              req.Color,
	}
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repositories.NewCategoryRepository(tx)
		taken, err := repo.NameTaken(req.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("category " + req.Name + " already exists")
		}
		return repo.Create(category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req CategoryRequest) (*models.StockCategory, error) {
	if err := req.check(); err != nil {
		return nil, err
	}

	var category *models.StockCategory
	err := withTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repositories.NewCategoryRepository(tx)
		var err error
		if category, err = repo.GetByID(id); err != nil {
			return apperror.Wrap(err, "category")
		}
		taken, err := repo.NameTaken(req.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("category " + req.Name + " already exists")
		}

		category.Name = req.Name
		category.DefaultParLevel = req.DefaultParLevel
		category.AgingThresholdDays = req.AgingThresholdDays
		category.Color = req.Color
		return repo.Save(category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses while live stock still points at the category.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return withTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repositories.NewCategoryRepository(tx)
		category, err := repo.GetByID(id)
		if err != nil {
			return apperror.Wrap(err, "category")
		}
		stock := repositories.NewStockRepository(tx)
		inUse, err := stock.CountByCategory(id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return apperror.Conflict("category " + category.Name + " is still used by stock items")
		}
		if err := stock.DetachCategory(id); err != nil {
			return err
		}
		return repo.Delete(id)
	})
}

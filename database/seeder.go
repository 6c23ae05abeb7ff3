package database

import (
	"errors"
	"fmt"
	"stock-app/models"
	"stock-app/types"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunSeeders loads reference data. Demo users and stock are only added
// when demo is set. Every seeder skips rows that already exist.
func RunSeeders(db *gorm.DB, tenantID uint, demo bool) error {
	if err := SeedDepartments(db, tenantID); err != nil {
		return err
	}
	if err := SeedCategories(db); err != nil {
		return err
	}
	if err := SeedBarcodeItems(db); err != nil {
		return err
	}
	if !demo {
		return nil
	}
	if err := SeedUsers(db, tenantID); err != nil {
		return err
	}
	return SeedStockItems(db, tenantID)
}

func SeedDepartments(db *gorm.DB, tenantID uint) error {
	for _, name := range []string{"Warehouse", "IT Department", "Finance", "Operations"} {
		var existing models.Department
		err := db.Where("tenant_id = ? AND name = ?", tenantID, name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&models.Department{Name: name, TenantID: tenantID}).Error; err != nil {
				return fmt.Errorf("seed department %s: %w", name, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

func SeedCategories(db *gorm.DB) error {
	categories := []models.StockCategory{
		{Name: "Electronics", DefaultParLevel: 5, AgingThresholdDays: 365, Color: "#3B82F6"},
		{Name: "Office Supplies", DefaultParLevel: 20, AgingThresholdDays: 180, Color: "#10B981"},
		{Name: "Furniture", DefaultParLevel: 2, AgingThresholdDays: 730, Color: "#F59E0B"},
	}

	for _, c := range categories {
		var existing models.StockCategory
		err := db.Where("name = ?", c.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&c).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

func SeedBarcodeItems(db *gorm.DB) error {
	var electronics models.StockCategory
	var categoryID *uint
	if err := db.Where("name = ?", "Electronics").First(&electronics).Error; err == nil {
		categoryID = &electronics.ID
	}

	items := []models.BarcodeItem{
		{Barcode: "1234567890123", Name: "Dell Laptop XPS 13", CategoryName: "Electronics", SupplierVendor: "Dell", UnitCost: decimal.RequireFromString("1299.99")},
		{Barcode: "9876543210987", Name: "iPhone 15 Pro", CategoryName: "Electronics", SupplierVendor: "Apple", UnitCost: decimal.RequireFromString("999.99")},
		{Barcode: "5555666677778", Name: "Wireless Mouse", CategoryName: "Electronics", SupplierVendor: "Logitech", UnitCost: decimal.RequireFromString("29.99")},
	}

	for _, b := range items {
		var existing models.BarcodeItem
		err := db.Where("barcode = ?", b.Barcode).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.CategoryID = categoryID
			if err := db.Create(&b).Error; err != nil {
				return fmt.Errorf("seed barcode %s: %w", b.Barcode, err)
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates the demo accounts; every password is "password".
func SeedUsers(db *gorm.DB, tenantID uint) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []struct {
		user       models.User
		department string
	}{
		{models.User{Username: "admin", Email: "admin@example.com", Name: "Admin User", Roles: types.RoleList{types.RoleAdmin}}, "Warehouse"},
		{models.User{Username: "manager", Email: "manager@example.com", Name: "Stock Manager", Roles: types.RoleList{types.RoleStockManager}}, "Warehouse"},
		{models.User{Username: "staff", Email: "staff@example.com", Name: "Regular Staff", Roles: types.RoleList{types.RoleStaff}}, "IT Department"},
		{models.User{Username: "john_manager", Email: "john.manager@example.com", Name: "John Manager", Roles: types.RoleList{types.RoleStockManager, types.RoleStaff}}, "Operations"},
	}

	for _, u := range users {
		var existing models.User
		err := db.Where("username = ?", u.user.Username).First(&existing).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			if err != nil {
				return err
			}
			continue
		}

		var dept models.Department
		if err := db.Where("tenant_id = ? AND name = ?", tenantID, u.department).First(&dept).Error; err != nil {
			return fmt.Errorf("seed user %s: department %s: %w", u.user.Username, u.department, err)
		}

		user := u.user
		user.Password = string(hash)
		user.Status = models.UserStatusActive
		user.DepartmentID = &dept.ID
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", user.Username, err)
		}
	}
	return nil
}

func SeedStockItems(db *gorm.DB, tenantID uint) error {
	var count int64
	if err := db.Model(&models.StockItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []struct {
		name, barcode, department string
		quantity, parLevel        int
	}{
		{"Dell Laptop XPS 13", "1234567890123", "Warehouse", 5, 3},
		{"iPhone 15 Pro", "9876543210987", "Warehouse", 12, 5},
		{"Wireless Mouse", "5555666677778", "IT Department", 20, 25},
		{"Office Chair", "", "IT Department", 10, 2},
		{"Projector", "", "Finance", 2, 1},
	}

	for _, it := range items {
		var dept models.Department
		if err := db.Where("tenant_id = ? AND name = ?", tenantID, it.department).First(&dept).Error; err != nil {
			return fmt.Errorf("seed stock %s: %w", it.name, err)
		}
		item := models.StockItem{
			Name:         it.name,
			Barcode:      it.barcode,
			Quantity:     it.quantity,
			ParLevel:     it.parLevel,
			DepartmentID: dept.ID,
			Status:       models.StockStatusAvailable,
		}
		if err := db.Create(&item).Error; err != nil {
			return fmt.Errorf("seed stock %s: %w", it.name, err)
		}
	}
	return nil
}

package services

import (
	"context"
	"stock-app/database"
	"stock-app/migration"
	"stock-app/models"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixture is an in-memory database seeded with the demo departments and
// users: admin and manager in Warehouse, staff in IT Department.
type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	log   *zap.Logger
	trail *AuditTrail

	admin, manager, staff models.User
	warehouse, it         models.Department
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(database.Settings{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(db))
	require.NoError(t, database.SeedDepartments(db, 1))
	require.NoError(t, database.SeedCategories(db))
	require.NoError(t, database.SeedUsers(db, 1))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{ctx: context.Background(), db: db, log: zap.NewNop()}
	f.trail = NewAuditTrail(nil, f.log)

	require.NoError(t, db.Where("username = ?", "admin").First(&f.admin).Error)
	require.NoError(t, db.Where("username = ?", "manager").First(&f.manager).Error)
	require.NoError(t, db.Where("username = ?", "staff").First(&f.staff).Error)
	require.NoError(t, db.Where("name = ?", "Warehouse").First(&f.warehouse).Error)
	require.NoError(t, db.Where("name = ?", "IT Department").First(&f.it).Error)
	return f
}

func (f *fixture) actor(u models.User) Actor {
	return ActorFromUser(&u)
}

func (f *fixture) item(t *testing.T, name string, departmentID uint, quantity, parLevel int) *models.StockItem {
	t.Helper()
	item := &models.StockItem{
		Name:           name,
		SupplierVendor: "Acme",
		UnitCost:       decimal.RequireFromString("2.00"),
		Quantity:       quantity,
		ParLevel:       parLevel,
		DepartmentID:   departmentID,
		Status:         models.StockStatusAvailable,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *fixture) reload(t *testing.T, id uint) *models.StockItem {
	t.Helper()
	var item models.StockItem
	require.NoError(t, f.db.First(&item, id).Error)
	return &item
}

func (f *fixture) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

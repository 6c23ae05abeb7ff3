package models

import (
	"stock-app/controllers/idgen"
	"stock-app/types"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockIntakeLog struct {
	ID             types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ItemID         uint              `json:"item_id" gorm:"not null;index"`
	ItemName       string            `json:"item_name" gorm:"size:200"`
	Barcode        string            `json:"barcode" gorm:"size:64"`
	CategoryID     *uint             `json:"category_id"`
	SupplierVendor string            `json:"supplier_vendor" gorm:"size:200;index"`
	Quantity       int               `json:"quantity" gorm:"not null"`
	UnitCost       decimal.Decimal   `json:"unit_cost" gorm:"type:decimal(12,2)"`
	TotalCost      decimal.Decimal   `json:"total_cost" gorm:"type:decimal(14,2)"`
	ReceivedDate   time.Time         `json:"received_date" gorm:"index"`
	DepartmentID   uint              `json:"department_id" gorm:"not null;index"`
	ReceivedByID   uint              `json:"received_by"`
	IsNewItem      bool              `json:"is_new_item"`
	Notes          string            `json:"notes" gorm:"size:500"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (l *StockIntakeLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == 0 {
		l.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StockStatusAvailable = "available"
	StockStatusAssigned  = "assigned"
	StockStatusFaulty    = "faulty"
	StockStatusDeleted   = "deleted"
)

type StockItem struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"size:200;not null;index"`
	Barcode        string          `json:"barcode" gorm:"size:64;index"`
	CategoryID     *uint           `json:"category_id" gorm:"index"`
	Category       *StockCategory  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	SupplierVendor string          `json:"supplier_vendor" gorm:"size:200"`
	UnitCost       decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2)"`
	Quantity       int             `json:"quantity" gorm:"not null;check:quantity >= 0"`
	ParLevel       int             `json:"par_level" gorm:"not null"`
	FaultyQuantity int             `json:"faulty_quantity" gorm:"not null"`
	BelowPar       bool            `json:"below_par"`
	DepartmentID   uint            `json:"department_id" gorm:"not null;index"`
	Department     *Department     `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Status         string          `json:"status" gorm:"size:20;not null;index"`
	AgeInDays      int             `json:"age_in_days" gorm:"-"`
	CreatedBy      uint            `json:"created_by"`
	UpdatedBy      uint            `json:"updated_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BeforeSave keeps below_par in step with quantity and par level.
func (i *StockItem) BeforeSave(tx *gorm.DB) error {
	i.BelowPar = i.Quantity < i.ParLevel
	return nil
}

func (i *StockItem) AfterFind(tx *gorm.DB) error {
	i.AgeInDays = AgeInDays(i.CreatedAt, time.Now())
	return nil
}

// AgeInDays counts whole days between created and now, never negative.
func AgeInDays(created, now time.Time) int {
	if created.IsZero() || now.Before(created) {
		return 0
	}
	return int(now.Sub(created).Hours() / 24)
}

type StockCategory struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	DefaultParLevel    int       `json:"default_par_level" gorm:"not null"`
	AgingThresholdDays int       `json:"aging_threshold_days" gorm:"not null"`
	Color              string    `json:"color" gorm:"size:20"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// BarcodeItem is the catalog consulted by barcode lookup at intake.
type BarcodeItem struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Barcode        string          `json:"barcode" gorm:"size:64;not null;uniqueIndex"`
	Name           string          `json:"name" gorm:"size:200;not null"`
	CategoryID     *uint           `json:"category_id"`
	CategoryName   string          `json:"category" gorm:"size:100"`
	SupplierVendor string          `json:"supplier_vendor" gorm:"size:200"`
	UnitCost       decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2)"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

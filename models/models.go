package models

import (
	"time"

	"gorm.io/gorm"
)

// ImportFile remembers bulk intake files that were already processed.
type ImportFile struct {
	gorm.Model
	Filename   string `gorm:"size:255;unique;not null"`
	Rows       int
	ImportedAt time.Time
}

// All lists every table owned by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Department{},
		&StockCategory{},
		&User{},
		&PendingUser{},
		&UserSession{},
		&LoginLog{},
		&StockItem{},
		&BarcodeItem{},
		&Assignment{},
		&StockTransfer{},
		&StockIntakeLog{},
		&AuditLog{},
		&ImportFile{},
	}
}

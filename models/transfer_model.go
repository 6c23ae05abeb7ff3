package models

import (
	"stock-app/controllers/idgen"
	"stock-app/types"
	"time"

	"gorm.io/gorm"
)

const (
	TransferStatusPending   = "pending"
	TransferStatusApproved  = "approved"
	TransferStatusRejected  = "rejected"
	TransferStatusCompleted = "completed"

	TransferTypeMerge     = "merge"
	TransferTypeNewRecord = "new_record"
)

type StockTransfer struct {
	ID                types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	StockItemID       uint              `json:"stock_item_id" gorm:"not null;index"`
	ItemName          string            `json:"item_name" gorm:"size:200"`
	FromDepartmentID  uint              `json:"from_department_id" gorm:"not null;index"`
	ToDepartmentID    uint              `json:"to_department_id" gorm:"not null;index"`
	Quantity          int               `json:"quantity" gorm:"not null"`
	Status            string            `json:"status" gorm:"size:20;not null;index"`
	TransferType      string            `json:"transfer_type" gorm:"size:20"`
	DestinationItemID *uint             `json:"destination_item_id"`
	InitiatedByID     uint              `json:"initiated_by" gorm:"not null"`
	ApprovedByID      *uint             `json:"approved_by"`
	RejectionReason   string            `json:"rejection_reason" gorm:"size:500"`
	Notes             string            `json:"notes" gorm:"size:500"`
	AuditNote         string            `json:"audit_note" gorm:"size:500"`
	ApprovedAt        *time.Time        `json:"approved_at"`
	CompletedAt       *time.Time        `json:"completed_at"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (t *StockTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

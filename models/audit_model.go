package models

import (
	"errors"
	"stock-app/controllers/idgen"
	"stock-app/types"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionAssign          = "assign"
	AuditActionReturn          = "return"
	AuditActionDelete          = "delete"
	AuditActionMarkFaulty      = "mark_faulty"
	AuditActionTransfer        = "transfer"
	AuditActionApproveTransfer = "approve_transfer"
	AuditActionRejectTransfer  = "reject_transfer"
	AuditActionAddStock        = "add_stock"
	AuditActionUpdateParLevel  = "update_par_level"
	AuditActionUpdateRoles     = "update_roles"
	AuditActionUpdateStatus    = "update_status"
	AuditActionApproveUser     = "approve_user"
	AuditActionRejectUser      = "reject_user"
)

var ErrAuditLogImmutable = errors.New("audit log entries cannot be modified")

// AuditLog is append-only. The update and delete hooks refuse any change.
type AuditLog struct {
	ID              types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Timestamp       time.Time         `json:"timestamp" gorm:"not null;index"`
	Action          string            `json:"action" gorm:"size:40;not null;index"`
	Reason          string            `json:"reason" gorm:"size:500"`
	StockItemID     *uint             `json:"stock_item_id" gorm:"index"`
	StockItemName   string            `json:"stock_item_name" gorm:"size:200"`
	UserID          *uint             `json:"user_id" gorm:"index"`
	DepartmentID    *uint             `json:"department_id" gorm:"index"`
	PerformedByID   uint              `json:"performed_by_id" gorm:"not null;index"`
	PerformedByName string            `json:"performed_by" gorm:"size:100"`
	Details         datatypes.JSONMap `json:"details"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == 0 {
		a.ID = types.SnowflakeID(idgen.GenerateID())
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

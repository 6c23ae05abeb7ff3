package models

import "time"

const (
	AssignmentStatusActive   = "active"
	AssignmentStatusReturned = "returned"
	AssignmentStatusFaulty   = "faulty"

	ConditionGood    = "good"
	ConditionDamaged = "damaged"
	ConditionLost    = "lost"
)

// Assignment binds one unit of a stock item to a user.
type Assignment struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	StockItemID  uint       `json:"stock_item_id" gorm:"not null;index"`
	StockItem    *StockItem `json:"stock_item,omitempty" gorm:"foreignKey:StockItemID"`
	UserID       uint       `json:"user_id" gorm:"not null;index"`
	User         *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AssignedByID uint       `json:"assigned_by" gorm:"not null"`
	Reason       string     `json:"reason" gorm:"size:500"`
	Status       string     `json:"status" gorm:"size:20;not null;index"`
	Condition    string     `json:"condition" gorm:"size:20"`
	ReturnReason string     `json:"return_reason" gorm:"size:500"`
	IsFaulty     bool       `json:"is_faulty"`
	AssignedAt   time.Time  `json:"assigned_at"`
	ReturnedAt   *time.Time `json:"returned_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

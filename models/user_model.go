package models

import (
	"stock-app/types"
	"time"

	"gorm.io/gorm"
)

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"

	PendingStatusPending  = "pending"
	PendingStatusApproved = "approved"
	PendingStatusRejected = "rejected"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Email        string         `json:"email" gorm:"size:200;not null;uniqueIndex"`
	Name         string         `json:"name" gorm:"size:200"`
	Password     string         `json:"-" gorm:"size:200;not null"`
	Roles        types.RoleList `json:"roles" gorm:"type:varchar(100);not null"`
	DepartmentID *uint          `json:"department_id"`
	Department   *Department    `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	Status       string         `json:"status" gorm:"size:20;not null;index"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// PendingUser holds an elevated-role registration until an admin reviews it.
type PendingUser struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Username        string         `json:"username" gorm:"size:100;not null;index"`
	Email           string         `json:"email" gorm:"size:200;not null;index"`
	Name            string         `json:"name" gorm:"size:200"`
	PasswordHash    string         `json:"-" gorm:"size:200;not null"`
	RequestedRoles  types.RoleList `json:"requested_roles" gorm:"type:varchar(100);not null"`
	DepartmentID    *uint          `json:"department_id"`
	Status          string         `json:"status" gorm:"size:20;not null;index"`
	ReviewedByID    *uint          `json:"reviewed_by"`
	ReviewedAt      *time.Time     `json:"reviewed_at"`
	RejectionReason string         `json:"rejection_reason"`
	ApprovedUserID  *uint          `json:"approved_user_id"`
	CreatedAt       time.Time      `json:"requested_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type UserSession struct {
	gorm.Model
	SessionID      string    `json:"session_id" gorm:"size:64;not null;uniqueIndex"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	IPAddress      string    `json:"ip_address" gorm:"size:64"`
	UserAgent      string    `json:"user_agent" gorm:"size:500"`
	DeviceID       string    `json:"device_id" gorm:"size:20"`
	IsActive       bool      `json:"is_active" gorm:"index"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type LoginLog struct {
	ID            uint       `gorm:"primaryKey"`
	SessionID     string     `gorm:"size:64;index"`
	Username      string     `gorm:"size:200"`
	UserID        *uint      `gorm:"index"`
	LoginAt       *time.Time
	LogoutAt      *time.Time
	IPAddress     string `gorm:"size:64"`
	UserAgent     string `gorm:"size:500"`
	Browser       string `gorm:"size:50"`
	OS            string `gorm:"size:50"`
	DeviceType    string `gorm:"size:20"`
	LoginStatus   string `gorm:"size:20"`
	FailureReason *string
	CreatedAt     time.Time
}

package models

import "time"

type Department struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_departments_tenant_name"`
	TenantID  uint      `json:"tenant_id" gorm:"not null;uniqueIndex:idx_departments_tenant_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

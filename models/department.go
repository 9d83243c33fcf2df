package models

import "time"

// Department is routing reference data; every document is in the custody of
// exactly one department at a time.
type Department struct {
	DepartmentID   int        `gorm:"primaryKey;column:department_id" json:"department_id"`
	DepartmentName string     `gorm:"column:department_name" json:"department_name"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Department) TableName() string {
	return "departments"
}

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID  uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Group    *Group    `gorm:"constraint:OnDelete:CASCADE;foreignKey:GroupID;references:ID" json:"group,omitempty"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	SafeName string    `gorm:"column:safe_name;not null;index" json:"safe_name"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

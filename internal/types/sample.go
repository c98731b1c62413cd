package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sample struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	SafeName  string    `gorm:"column:safe_name;not null;index" json:"safe_name"`
	Scientist string    `gorm:"column:scientist" json:"scientist,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Sample) TableName() string { return "sample" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdditionalFile attaches a non-read file (report, sheet, image) to a run or
// project. These carry no checksum workflow.
type AdditionalFile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParentType string    `gorm:"column:parent_type;not null;index" json:"parent_type"` // run|project
	ParentID   uuid.UUID `gorm:"type:uuid;column:parent_id;not null;index" json:"parent_id"`
	FileID     uuid.UUID `gorm:"type:uuid;not null" json:"file_id"`
	File       *File     `gorm:"foreignKey:FileID;references:ID" json:"file,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AdditionalFile) TableName() string { return "additional_file" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Read struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RunID  uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	Run    *Run      `gorm:"constraint:OnDelete:CASCADE;foreignKey:RunID;references:ID" json:"run,omitempty"`
	FileID uuid.UUID `gorm:"type:uuid;not null" json:"file_id"`
	File   *File     `gorm:"foreignKey:FileID;references:ID" json:"file,omitempty"`

	// MD5 is the checksum supplied at upload time, normalized to lowercase
	// when the record is written. DestinationMD5 is recomputed from the
	// relocated bytes by the verification engine; MD5Mismatch stays nil
	// until that comparison has actually happened.
	MD5            string     `gorm:"column:md5" json:"md5,omitempty"`
	DestinationMD5 *string    `gorm:"column:destination_md5" json:"destination_md5,omitempty"`
	MD5Mismatch    *bool      `gorm:"column:md5_mismatch" json:"md5_mismatch,omitempty"`
	MD5CheckedAt   *time.Time `gorm:"column:md5_checked_at" json:"md5_checked_at,omitempty"`

	Paired    bool       `gorm:"column:paired;not null;default:false" json:"paired"`
	SiblingID *uuid.UUID `gorm:"column:sibling_id;type:uuid" json:"sibling_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Read) TableName() string { return "read" }

package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadMethod says how a file's bytes arrived before ingestion relocated
// them: streamed through the resumable upload server, or pre-staged on the
// HPC transfer share by the cluster-side mover.
type UploadMethod string

const (
	UploadMethodDirect UploadMethod = "direct"
	UploadMethodHPCMv  UploadMethod = "hpc-mv"
)

type File struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string       `gorm:"column:name;not null" json:"name"`
	OriginalName string       `gorm:"column:original_name;not null" json:"original_name"`
	Path         string       `gorm:"column:path;not null" json:"path"`
	TempPath     string       `gorm:"column:temp_path" json:"temp_path,omitempty"`
	UploadMethod UploadMethod `gorm:"column:upload_method;not null" json:"upload_method"`
	FileType     string       `gorm:"column:file_type;not null" json:"file_type"` // read|additional

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (File) TableName() string { return "file" }

package types

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Run struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SampleID uuid.UUID `gorm:"type:uuid;not null;index" json:"sample_id"`
	Sample   *Sample   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SampleID;references:ID" json:"sample,omitempty"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	SafeName string    `gorm:"column:safe_name;not null;index" json:"safe_name"`

	Status      RunStatus `gorm:"column:status;not null;default:'uninitiated';index" json:"status"` // uninitiated|processing|complete|error
	StatusError string    `gorm:"column:status_error" json:"status_error,omitempty"`

	MD5VerificationStatus      MD5VerificationStatus `gorm:"column:md5_verification_status;not null;default:'pending';index" json:"md5_verification_status"` // pending|in_progress|complete|failed
	MD5VerificationAttempts    int                   `gorm:"column:md5_verification_attempts;not null;default:0" json:"md5_verification_attempts"`
	MD5VerificationLastAttempt *time.Time            `gorm:"column:md5_verification_last_attempt" json:"md5_verification_last_attempt,omitempty"`
	MD5VerificationCompletedAt *time.Time            `gorm:"column:md5_verification_completed_at" json:"md5_verification_completed_at,omitempty"`
	VerificationSummary        datatypes.JSON        `gorm:"column:verification_summary;type:jsonb" json:"verification_summary,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Run) TableName() string { return "run" }

// RelativePath joins the safe names of the owning hierarchy into the run's
// storage path under the datastore root. The Sample→Project→Group chain must
// be preloaded; ingestion and verification resolve this once per run and
// pass the cached value around.
func (r *Run) RelativePath() (string, error) {
	if r.Sample == nil || r.Sample.Project == nil || r.Sample.Project.Group == nil {
		return "", fmt.Errorf("run %s hierarchy not loaded, cannot derive path", r.ID)
	}
	return filepath.Join(
		r.Sample.Project.Group.SafeName,
		r.Sample.Project.SafeName,
		r.Sample.SafeName,
		r.SafeName,
	), nil
}

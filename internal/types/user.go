package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Email    string    `gorm:"column:email" json:"email"`
	Password string    `gorm:"column:password" json:"-"`
	GroupID  uuid.UUID `gorm:"type:uuid;index" json:"group_id"`
	IsAdmin  bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "app_user" }

package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an employee known to the bot. Rows are created lazily the
// first time an attendance event arrives for a platform account; nothing in
// this system deletes them.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AccountID  string         `gorm:"size:128;uniqueIndex;not null" json:"account_id"`
	Name       string         `gorm:"size:128" json:"name"`
	Email      string         `gorm:"size:255" json:"email"`
	Department string         `gorm:"size:128" json:"department"`
	Position   string         `gorm:"size:128" json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

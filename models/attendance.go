package models

import "time"

// Action labels written to the store. The set is open ended: leave-type labels
// arriving from config (연차, 반차, ...) are stored as-is.
const (
	ActionCheckin         = "출근"
	ActionCheckout        = "퇴근"
	ActionImageUpload     = "이미지업로드"
	ActionLocationCheckin = "위치출근"
)

// How the attendance action reached us.
const (
	MethodLocation = "location"
	MethodPhoto    = "photo"
	MethodText     = "text"
	MethodManual   = "manual"
)

// Attendance is one recorded attendance action (relational variant). Rows are
// immutable once written; corrections happen by hand in the backend.
type Attendance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Action      string    `gorm:"size:32;not null" json:"action"`
	Method      string    `gorm:"size:16;not null" json:"method"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	ImageURL    string    `gorm:"size:1024" json:"image_url"`
	Address     string    `gorm:"size:512" json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	LocVerified bool      `json:"location_verified"`
	Notes       string    `gorm:"size:512" json:"notes"`
	IsLate      bool      `json:"is_late"`
	LateMinutes int       `json:"late_minutes"`
	ClientIP    string    `gorm:"size:45" json:"client_ip"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}

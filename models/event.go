package models

import "time"

// UserInfo is the profile snapshot resolved from the messaging platform at
// event time. Lookups that fail fall back to placeholder values instead of
// blocking the attendance record.
type UserInfo struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Department     string `json:"department"`
	Level          string `json:"level"`
	Position       string `json:"position"`
	EmployeeNumber string `json:"employeeNumber"`
}

// PlaceholderUserInfo returns the fallback snapshot used when the profile
// lookup fails; the account id is truncated so something identifying survives.
func PlaceholderUserInfo(accountID string) UserInfo {
	name := accountID
	if len(name) > 8 {
		name = name[:8] + "..."
	}
	return UserInfo{
		Name:           name,
		Email:          "정보없음",
		Department:     "정보없음",
		Level:          "정보없음",
		Position:       "정보없음",
		EmployeeNumber: "정보없음",
	}
}

// LocationInfo carries the reported coordinates plus the verification verdict
// of the dropped-pin heuristic.
type LocationInfo struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Verified  bool    `json:"verified"`
	Notes     string  `json:"notes"`
}

// RequestInfo holds transport-level hints extracted from the inbound webhook
// request, used only for risk annotations in confirmations.
type RequestInfo struct {
	ClientIP  string `json:"clientIp"`
	UserAgent string `json:"userAgent"`
	Country   string `json:"country"`
	City      string `json:"city"`
}

// AttendanceEvent is the record a handler assembles for persistence. Exactly
// one is written per accepted inbound action.
type AttendanceEvent struct {
	AccountID   string        `json:"accountId"`
	DomainID    int64         `json:"domainId,omitempty"`
	Action      string        `json:"action"`
	Method      string        `json:"method,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Location    *LocationInfo `json:"location,omitempty"`
	UserInfo    UserInfo      `json:"userInfo"`
	RequestInfo *RequestInfo  `json:"-"`
	IsLate      bool          `json:"isLate"`
	LateMinutes int           `json:"lateMinutes,omitempty"`
}

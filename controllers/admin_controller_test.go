package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/models"
)

func TestDayStats(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 28, hour, minute, 0, 0, time.UTC)
	}
	events := []models.AttendanceEvent{
		{AccountID: "u1", Action: models.ActionCheckin, Timestamp: at(9, 0)},
		{AccountID: "u1", Action: models.ActionCheckout, Timestamp: at(18, 0)},
		{AccountID: "u2", Action: models.ActionLocationCheckin, Timestamp: at(9, 30), IsLate: true, LateMinutes: 30},
		{AccountID: "u2", Action: models.ActionCheckout, Timestamp: at(17, 30)},
		{AccountID: "u3", Action: models.ActionCheckin, Timestamp: at(10, 0), IsLate: true},
		// u3 never checks out, must not skew the average
	}

	stats := DayStats(events, time.UTC)

	if stats["totalUsers"] != 3 {
		t.Errorf("totalUsers = %v, want 3", stats["totalUsers"])
	}
	if stats["totalCheckins"] != 3 {
		t.Errorf("totalCheckins = %v, want 3", stats["totalCheckins"])
	}
	if stats["lateToday"] != 2 {
		t.Errorf("lateToday = %v, want 2", stats["lateToday"])
	}
	// (9h + 8h) / 2 pairs
	if stats["averageWorkingHours"] != "8.5" {
		t.Errorf("averageWorkingHours = %v, want 8.5", stats["averageWorkingHours"])
	}
}

func TestAdminAttendanceEndpoint(t *testing.T) {
	store := &fakeStore{}
	store.saved = append(store.saved, &models.AttendanceEvent{
		AccountID: "u1",
		Action:    models.ActionCheckin,
		Timestamp: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		UserInfo:  models.UserInfo{Name: "김철수"},
	})

	r := gin.New()
	r.GET("/api/admin/attendance", NewAdminController(store, time.UTC).Attendance)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/attendance?date=2026-08-28", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	var resp struct {
		Data struct {
			Date    string                   `json:"date"`
			Records []models.AttendanceEvent `json:"records"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Date != "2026-08-28" || len(resp.Data.Records) != 1 {
		t.Errorf("unexpected response: %+v", resp.Data)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/attendance?date=28-08-2026", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", w.Code)
	}
}

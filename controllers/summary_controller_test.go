package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/config"
)

func TestSummaryUnavailableWithoutSheets(t *testing.T) {
	r := gin.New()
	r.GET("/api/weekly-summary", NewSummaryController(nil, time.UTC).Get)

	req := httptest.NewRequest(http.MethodGet, "/api/weekly-summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", w.Code)
	}
}

func TestSchedulerRunUnavailableWithoutSheets(t *testing.T) {
	cfg := config.AppConfig{SchedulerWeekday: 5, SchedulerHour: 14}
	r := gin.New()
	r.POST("/api/scheduler", NewSchedulerController(cfg, nil, time.UTC).Run)

	req := httptest.NewRequest(http.MethodPost, "/api/scheduler?force=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", w.Code)
	}
}

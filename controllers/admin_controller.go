package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/storage"
	"github.com/hyunw00/attendbot/utils"
)

// AdminController serves the read-side endpoints behind admin auth.
type AdminController struct {
	store storage.Store
	loc   *time.Location
}

func NewAdminController(store storage.Store, loc *time.Location) *AdminController {
	return &AdminController{store: store, loc: loc}
}

// Attendance returns the records plus day-level stats for ?date=YYYY-MM-DD,
// defaulting to today.
func (a *AdminController) Attendance(c *gin.Context) {
	day := time.Now().In(a.loc)
	if q := c.Query("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, a.loc)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, 40010, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	events, err := a.store.DayEvents(c.Request.Context(), day)
	if err != nil {
		utils.Sugar.Errorf("day events for %s: %v", day.Format("2006-01-02"), err)
		utils.Error(c, http.StatusInternalServerError, 50010, "failed to load records")
		return
	}

	utils.Success(c, gin.H{
		"date":    day.Format("2006-01-02"),
		"records": events,
		"stats":   DayStats(events, a.loc),
	})
}

// DayStats computes day-level aggregates: distinct users seen, check-ins,
// late arrivals, and the mean working hours from paired check-in/check-out
// times per user.
func DayStats(events []models.AttendanceEvent, loc *time.Location) gin.H {
	type span struct {
		checkin  time.Time
		checkout time.Time
	}

	users := map[string]bool{}
	spans := map[string]*span{}
	checkins, late := 0, 0

	for i := range events {
		ev := &events[i]
		key := ev.AccountID
		if key == "" {
			key = ev.UserInfo.Name
		}
		users[key] = true

		switch ev.Action {
		case models.ActionCheckin, models.ActionLocationCheckin:
			checkins++
			if ev.IsLate {
				late++
			}
			s := spans[key]
			if s == nil {
				s = &span{}
				spans[key] = s
			}
			if s.checkin.IsZero() || ev.Timestamp.Before(s.checkin) {
				s.checkin = ev.Timestamp
			}
		case models.ActionCheckout:
			s := spans[key]
			if s == nil {
				s = &span{}
				spans[key] = s
			}
			if ev.Timestamp.After(s.checkout) {
				s.checkout = ev.Timestamp
			}
		}
	}

	var totalHours float64
	paired := 0
	for _, s := range spans {
		if s.checkin.IsZero() || s.checkout.IsZero() || !s.checkout.After(s.checkin) {
			continue
		}
		totalHours += s.checkout.Sub(s.checkin).Hours()
		paired++
	}

	avg := "0.0"
	if paired > 0 {
		avg = fmt.Sprintf("%.1f", totalHours/float64(paired))
	}

	return gin.H{
		"totalUsers":          len(users),
		"totalCheckins":       checkins,
		"lateToday":           late,
		"averageWorkingHours": avg,
	}
}

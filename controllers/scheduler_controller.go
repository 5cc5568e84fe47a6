package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/sheets"
	"github.com/hyunw00/attendbot/utils"
)

// SchedulerController runs the weekly summary on its configured window. An
// external cron hits Run once an hour; the window check keeps the summary to
// one weekday slot unless forced.
type SchedulerController struct {
	cfg        config.AppConfig
	summarizer *sheets.Summarizer
	loc        *time.Location
	now        func() time.Time
}

func NewSchedulerController(cfg config.AppConfig, summarizer *sheets.Summarizer, loc *time.Location) *SchedulerController {
	return &SchedulerController{cfg: cfg, summarizer: summarizer, loc: loc, now: time.Now}
}

func (s *SchedulerController) inWindow(t time.Time) bool {
	local := t.In(s.loc)
	return int(local.Weekday()) == s.cfg.SchedulerWeekday && local.Hour() >= s.cfg.SchedulerHour
}

// nextExecution finds the next window opening at or after t.
func (s *SchedulerController) nextExecution(t time.Time) time.Time {
	local := t.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.cfg.SchedulerHour, 0, 0, 0, s.loc)
	daysAhead := (s.cfg.SchedulerWeekday - int(local.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(local) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Status reports the window configuration and whether a run would fire now.
func (s *SchedulerController) Status(c *gin.Context) {
	now := s.now()
	utils.Success(c, gin.H{
		"weekday":       s.cfg.SchedulerWeekday,
		"hour":          s.cfg.SchedulerHour,
		"timezone":      s.loc.String(),
		"inWindow":      s.inWindow(now),
		"nextExecution": s.nextExecution(now).Format(time.RFC3339),
	})
}

// Run generates and saves the weekly summary when inside the window, or when
// ?force=true.
func (s *SchedulerController) Run(c *gin.Context) {
	if s.summarizer == nil {
		utils.Error(c, http.StatusServiceUnavailable, 50032, "sheet integration not configured")
		return
	}

	now := s.now()
	force := c.Query("force") == "true"
	if !force && !s.inWindow(now) {
		utils.Success(c, gin.H{
			"executed":      false,
			"reason":        "outside scheduled window",
			"nextExecution": s.nextExecution(now).Format(time.RFC3339),
		})
		return
	}

	summary, err := s.summarizer.Generate(c.Request.Context(), now)
	if err != nil {
		utils.Sugar.Errorf("scheduled summary: %v", err)
		utils.Error(c, http.StatusInternalServerError, 50030, "failed to build summary")
		return
	}
	if err := s.summarizer.Save(c.Request.Context(), summary); err != nil {
		utils.Sugar.Errorf("scheduled summary save: %v", err)
		utils.Error(c, http.StatusInternalServerError, 50031, "failed to save summary")
		return
	}

	utils.Success(c, gin.H{"executed": true, "forced": force, "summary": summary})
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyunw00/attendbot/sheets"
	"github.com/hyunw00/attendbot/utils"
)

// SummaryController exposes weekly aggregation on demand.
type SummaryController struct {
	summarizer *sheets.Summarizer
	loc        *time.Location
}

func NewSummaryController(summarizer *sheets.Summarizer, loc *time.Location) *SummaryController {
	return &SummaryController{summarizer: summarizer, loc: loc}
}

// Get aggregates the week containing ?date= (default today). ?save=true also
// appends the result to the summary worksheet.
func (s *SummaryController) Get(c *gin.Context) {
	if s.summarizer == nil {
		utils.Error(c, http.StatusServiceUnavailable, 50022, "sheet integration not configured")
		return
	}

	target := time.Now().In(s.loc)
	if q := c.Query("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, s.loc)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, 40020, "date must be YYYY-MM-DD")
			return
		}
		target = parsed
	}

	summary, err := s.summarizer.Generate(c.Request.Context(), target)
	if err != nil {
		utils.Sugar.Errorf("weekly summary: %v", err)
		utils.Error(c, http.StatusInternalServerError, 50020, "failed to build summary")
		return
	}

	saved := false
	if c.Query("save") == "true" || c.Request.Method == http.MethodPost {
		if err := s.summarizer.Save(c.Request.Context(), summary); err != nil {
			utils.Sugar.Errorf("summary save: %v", err)
			utils.Error(c, http.StatusInternalServerError, 50021, "failed to save summary")
			return
		}
		saved = true
	}

	utils.Success(c, gin.H{"summary": summary, "saved": saved})
}

package sheets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/utils"
)

// Row is one parsed attendance record from the sheet.
type Row struct {
	Timestamp  time.Time
	Name       string
	Email      string
	Department string
	Action     string
}

// ParseRow converts a raw sheet row into a Row. The first column must hold an
// RFC3339 timestamp; rows that fail to parse are reported via the error and
// skipped by callers.
func ParseRow(raw []string) (Row, error) {
	if len(raw) < 3 {
		return Row{}, fmt.Errorf("row too short: %d columns", len(raw))
	}
	ts, err := time.Parse(time.RFC3339, raw[0])
	if err != nil {
		return Row{}, fmt.Errorf("bad timestamp %q: %w", raw[0], err)
	}
	r := Row{Timestamp: ts, Name: raw[2]}
	if len(raw) > 3 {
		r.Email = raw[3]
	}
	if len(raw) > 4 {
		r.Department = raw[4]
	}
	if len(raw) > 8 {
		r.Action = raw[8]
	}
	return r, nil
}

// weekBounds returns the Sunday 00:00 start and exclusive end (next Sunday)
// of the week containing t, in the given location.
func weekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	start = start.AddDate(0, 0, -int(start.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

// Summarize aggregates check-in rows for the week containing target.
// Only rows whose action is one of checkinLabels count. An empty week yields
// a zero-value summary rather than an error.
func Summarize(rows []Row, target time.Time, loc *time.Location, checkinLabels []string) models.WeeklySummary {
	start, end := weekBounds(target, loc)

	labels := make(map[string]bool, len(checkinLabels))
	for _, l := range checkinLabels {
		labels[l] = true
	}

	var checkins []Row
	for _, r := range rows {
		local := r.Timestamp.In(loc)
		if local.Before(start) || !local.Before(end) {
			continue
		}
		if len(labels) > 0 && !labels[r.Action] {
			continue
		}
		checkins = append(checkins, r)
	}

	summary := models.WeeklySummary{
		WeekStart:          start.Format("2006-01-02"),
		WeekEnd:            end.AddDate(0, 0, -1).Format("2006-01-02"),
		AverageCheckinTime: "00:00",
		LatestCheckin: models.CheckinHighlight{
			Name: "없음",
			Time: "00:00",
		},
		DepartmentStats: map[string]models.DepartmentStat{},
	}
	if len(checkins) == 0 {
		return summary
	}

	names := map[string]bool{}
	var totalMinutes int
	latest := checkins[0]
	deptMinutes := map[string][]int{}
	deptLatest := map[string]Row{}

	for _, r := range checkins {
		names[r.Name] = true
		local := r.Timestamp.In(loc)
		mins := local.Hour()*60 + local.Minute()
		totalMinutes += mins
		if r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
		dept := r.Department
		if dept == "" {
			dept = "부서없음"
		}
		deptMinutes[dept] = append(deptMinutes[dept], mins)
		if prev, ok := deptLatest[dept]; !ok || r.Timestamp.After(prev.Timestamp) {
			deptLatest[dept] = r
		}
	}

	summary.TotalEmployees = len(names)
	summary.TotalCheckins = len(checkins)
	summary.AverageCheckinTime = formatMinutes(int(math.Round(float64(totalMinutes) / float64(len(checkins)))))

	latestLocal := latest.Timestamp.In(loc)
	summary.LatestCheckin = models.CheckinHighlight{
		Name:       latest.Name,
		Time:       latestLocal.Format("01-02 15:04"),
		Department: latest.Department,
	}

	for dept, mins := range deptMinutes {
		sum := 0
		for _, m := range mins {
			sum += m
		}
		last := deptLatest[dept]
		summary.DepartmentStats[dept] = models.DepartmentStat{
			TotalCheckins: len(mins),
			AverageTime:   formatMinutes(int(math.Round(float64(sum) / float64(len(mins))))),
			LatestCheckin: models.CheckinHighlight{
				Name:       last.Name,
				Time:       last.Timestamp.In(loc).Format("01-02 15:04"),
				Department: dept,
			},
		}
	}

	return summary
}

func formatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// Summarizer produces weekly summaries from the live sheet.
type Summarizer struct {
	client        *Client
	loc           *time.Location
	checkinLabels []string
	summarySheet  string
}

func NewSummarizer(client *Client, loc *time.Location, checkinLabels []string, summarySheet string) *Summarizer {
	return &Summarizer{
		client:        client,
		loc:           loc,
		checkinLabels: checkinLabels,
		summarySheet:  summarySheet,
	}
}

// Generate reads all attendance rows and aggregates the week containing
// target. Unparseable rows are logged and skipped.
func (s *Summarizer) Generate(ctx context.Context, target time.Time) (models.WeeklySummary, error) {
	cacheKey := "summary:" + s.client.SheetID() + ":" + target.In(s.loc).Format("2006-01-02")
	var cached models.WeeklySummary
	if utils.CacheGetJSON(cacheKey, &cached) {
		return cached, nil
	}

	sheetName, err := s.client.ResolveSheetName(ctx)
	if err != nil {
		return models.WeeklySummary{}, err
	}

	raw, err := s.client.ReadRange(ctx, sheetName+"!A2:L")
	if err != nil {
		return models.WeeklySummary{}, err
	}

	rows := make([]Row, 0, len(raw))
	for i, rr := range raw {
		row, err := ParseRow(rr)
		if err != nil {
			utils.Sugar.Warnf("skipping sheet row %d: %v", i+2, err)
			continue
		}
		rows = append(rows, row)
	}

	summary := Summarize(rows, target, s.loc, s.checkinLabels)
	utils.CacheSetJSON(cacheKey, summary, 5*time.Minute)
	return summary, nil
}

// Save writes the summary as one row of the summary worksheet, creating the
// worksheet on first use.
func (s *Summarizer) Save(ctx context.Context, summary models.WeeklySummary) error {
	header := []string{
		"주차시작", "주차종료", "총인원", "총출근수", "평균출근시간",
		"최근출근자", "최근출근시간", "부서별통계", "생성시각",
	}

	values, err := s.client.ReadRange(ctx, s.summarySheet+"!A1:I1")
	if err != nil {
		if err := s.client.AddSheet(ctx, s.summarySheet); err != nil {
			utils.Sugar.Warnf("summary sheet create: %v", err)
		}
		values = nil
	}
	if len(values) == 0 || len(values[0]) == 0 || values[0][0] != header[0] {
		row := make([]any, len(header))
		for i, h := range header {
			row[i] = h
		}
		if err := s.client.PutRange(ctx, s.summarySheet+"!A1:I1", [][]any{row}); err != nil {
			return err
		}
	}

	return s.client.AppendRow(ctx, s.summarySheet, []any{
		summary.WeekStart,
		summary.WeekEnd,
		strconv.Itoa(summary.TotalEmployees),
		strconv.Itoa(summary.TotalCheckins),
		summary.AverageCheckinTime,
		summary.LatestCheckin.Name,
		summary.LatestCheckin.Time,
		formatDeptStats(summary.DepartmentStats),
		time.Now().In(s.loc).Format("2006-01-02 15:04:05"),
	})
}

func formatDeptStats(stats map[string]models.DepartmentStat) string {
	if len(stats) == 0 {
		return ""
	}
	depts := make([]string, 0, len(stats))
	for d := range stats {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	parts := make([]string, 0, len(depts))
	for _, d := range depts {
		st := stats[d]
		parts = append(parts, fmt.Sprintf("%s(%d회, 평균 %s)", d, st.TotalCheckins, st.AverageTime))
	}
	return strings.Join(parts, " / ")
}

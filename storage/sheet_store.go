package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/sheets"
	"github.com/hyunw00/attendbot/utils"
)

// SheetStore appends attendance events as rows of a Google spreadsheet.
type SheetStore struct {
	client *sheets.Client
	loc    *time.Location
}

func NewSheetStore(client *sheets.Client, loc *time.Location) *SheetStore {
	return &SheetStore{client: client, loc: loc}
}

// Save writes one twelve-column row, ensuring the header on the way.
func (s *SheetStore) Save(ctx context.Context, event *models.AttendanceEvent) error {
	sheetName, err := s.client.ResolveSheetName(ctx)
	if err != nil {
		return err
	}
	s.client.EnsureHeader(ctx, sheetName)
	return s.client.AppendRow(ctx, sheetName, EventRow(event, s.loc))
}

// EventRow renders an event as the sheet's column layout, A through L.
func EventRow(event *models.AttendanceEvent, loc *time.Location) []any {
	domainID := ""
	if event.DomainID != 0 {
		domainID = strconv.FormatInt(event.DomainID, 10)
	}
	return []any{
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Timestamp.In(loc).Format("2006-01-02 15:04:05"),
		event.UserInfo.Name,
		event.UserInfo.Email,
		event.UserInfo.Department,
		event.UserInfo.Level,
		event.UserInfo.Position,
		event.UserInfo.EmployeeNumber,
		event.Action,
		domainID,
		"네이버웍스 봇",
		event.ImageURL,
	}
}

// DayEvents reads the full range and filters to the local day containing t.
func (s *SheetStore) DayEvents(ctx context.Context, t time.Time) ([]models.AttendanceEvent, error) {
	sheetName, err := s.client.ResolveSheetName(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.ReadRange(ctx, sheetName+"!A2:L")
	if err != nil {
		return nil, err
	}

	day := t.In(s.loc).Format("2006-01-02")
	var out []models.AttendanceEvent
	for i, rr := range raw {
		ev, err := parseEventRow(rr)
		if err != nil {
			utils.Sugar.Warnf("skipping sheet row %d: %v", i+2, err)
			continue
		}
		if ev.Timestamp.In(s.loc).Format("2006-01-02") == day {
			out = append(out, ev)
		}
	}
	return out, nil
}

func parseEventRow(raw []string) (models.AttendanceEvent, error) {
	row, err := sheets.ParseRow(raw)
	if err != nil {
		return models.AttendanceEvent{}, err
	}
	ev := models.AttendanceEvent{
		Timestamp: row.Timestamp,
		Action:    row.Action,
		UserInfo: models.UserInfo{
			Name:       row.Name,
			Email:      row.Email,
			Department: row.Department,
		},
	}
	if len(raw) > 5 {
		ev.UserInfo.Level = raw[5]
	}
	if len(raw) > 6 {
		ev.UserInfo.Position = raw[6]
	}
	if len(raw) > 7 {
		ev.UserInfo.EmployeeNumber = raw[7]
	}
	if len(raw) > 11 {
		ev.ImageURL = raw[11]
	}
	return ev, nil
}

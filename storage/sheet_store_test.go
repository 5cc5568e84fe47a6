package storage

import (
	"testing"
	"time"

	"github.com/hyunw00/attendbot/models"
)

func TestEventRow(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	ev := &models.AttendanceEvent{
		AccountID: "user-1",
		DomainID:  400123,
		Action:    models.ActionCheckin,
		Timestamp: time.Date(2026, 8, 28, 0, 30, 0, 0, time.UTC),
		ImageURL:  "https://cdn.example.com/a.webp",
		UserInfo: models.UserInfo{
			Name:           "김철수",
			Email:          "kim@corp.kr",
			Department:     "개발팀",
			Level:          "과장",
			Position:       "팀원",
			EmployeeNumber: "E-100",
		},
	}

	row := EventRow(ev, loc)
	if len(row) != 12 {
		t.Fatalf("row has %d columns, want 12", len(row))
	}

	want := []any{
		"2026-08-28T00:30:00Z",
		"2026-08-28 09:30:00",
		"김철수",
		"kim@corp.kr",
		"개발팀",
		"과장",
		"팀원",
		"E-100",
		"출근",
		"400123",
		"네이버웍스 봇",
		"https://cdn.example.com/a.webp",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestParseEventRowRoundTrip(t *testing.T) {
	loc := time.UTC
	ev := &models.AttendanceEvent{
		Action:    models.ActionLocationCheckin,
		Timestamp: time.Date(2026, 8, 28, 0, 30, 0, 0, time.UTC),
		UserInfo:  models.UserInfo{Name: "이영희", Email: "lee@corp.kr", Department: "기획팀"},
	}

	raw := make([]string, 12)
	for i, v := range EventRow(ev, loc) {
		raw[i] = v.(string)
	}

	parsed, err := parseEventRow(raw)
	if err != nil {
		t.Fatalf("parseEventRow: %v", err)
	}
	if !parsed.Timestamp.Equal(ev.Timestamp) || parsed.Action != ev.Action || parsed.UserInfo.Name != "이영희" {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}

package controllers

import (
	"testing"
	"time"

	"github.com/hyunw00/attendbot/config"
)

func testScheduler(weekday, hour int) *SchedulerController {
	return &SchedulerController{
		cfg: config.AppConfig{SchedulerWeekday: weekday, SchedulerHour: hour},
		loc: time.UTC,
	}
}

func TestSchedulerWindow(t *testing.T) {
	s := testScheduler(5, 14) // Friday 14:00

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"friday after hour", time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC), true},
		{"friday at hour", time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC), true},
		{"friday before hour", time.Date(2026, 8, 28, 13, 59, 0, 0, time.UTC), false},
		{"thursday", time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.inWindow(tt.t); got != tt.want {
				t.Errorf("inWindow(%s) = %v, want %v", tt.t.Format(time.RFC3339), got, tt.want)
			}
		})
	}
}

func TestSchedulerNextExecution(t *testing.T) {
	s := testScheduler(5, 14)

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			"midweek",
			time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC), // Wednesday
			time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC),
		},
		{
			"friday before window",
			time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC),
		},
		{
			"friday inside window rolls a week",
			time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 4, 14, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.nextExecution(tt.from); !got.Equal(tt.want) {
				t.Errorf("nextExecution(%s) = %s, want %s",
					tt.from.Format(time.RFC3339), got.Format(time.RFC3339), tt.want.Format(time.RFC3339))
			}
		})
	}
}

package bot

import (
	"testing"
	"time"

	"github.com/hyunw00/attendbot/models"
)

func TestLatenessPolicy(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}
	policy := NewLatenessPolicy("09:00", loc, []string{"연차", "반차"})

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 8, 28, hour, minute, 0, 0, loc)
	}

	tests := []struct {
		name        string
		action      string
		t           time.Time
		wantLate    bool
		wantMinutes int
	}{
		{"one minute late", models.ActionCheckin, at(9, 1), true, 1},
		{"on time", models.ActionCheckin, at(9, 0), false, 0},
		{"early", models.ActionCheckin, at(8, 59), false, 0},
		{"very late", models.ActionCheckin, at(11, 30), true, 150},
		{"exempt action late hour", "연차", at(11, 0), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			late, minutes := policy.Evaluate(tt.action, tt.t)
			if late != tt.wantLate || minutes != tt.wantMinutes {
				t.Errorf("Evaluate(%s, %s) = (%v, %d), want (%v, %d)",
					tt.action, tt.t.Format("15:04"), late, minutes, tt.wantLate, tt.wantMinutes)
			}
		})
	}
}

func TestLatenessPolicyBadStartFallsBack(t *testing.T) {
	policy := NewLatenessPolicy("not-a-time", time.UTC, nil)
	late, minutes := policy.Evaluate(models.ActionCheckin, time.Date(2026, 8, 28, 9, 5, 0, 0, time.UTC))
	if !late || minutes != 5 {
		t.Errorf("fallback threshold: got (%v, %d), want (true, 5)", late, minutes)
	}
}

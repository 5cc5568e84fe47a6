package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LatenessPolicy decides whether a check-in counts as late against the
// configured workday start, with exempt action labels (leave, half day,
// business trip and so on) never marked late.
type LatenessPolicy struct {
	startHour   int
	startMinute int
	loc         *time.Location
	exempt      map[string]bool
}

// NewLatenessPolicy parses an HH:MM workday start. A malformed value falls
// back to 09:00.
func NewLatenessPolicy(workdayStart string, loc *time.Location, exemptActions []string) *LatenessPolicy {
	h, m, err := parseHHMM(workdayStart)
	if err != nil {
		h, m = 9, 0
	}
	exempt := make(map[string]bool, len(exemptActions))
	for _, a := range exemptActions {
		exempt[a] = true
	}
	return &LatenessPolicy{startHour: h, startMinute: m, loc: loc, exempt: exempt}
}

// Evaluate returns whether a check-in at t with the given action label is
// late and by how many minutes.
func (p *LatenessPolicy) Evaluate(action string, t time.Time) (late bool, minutes int) {
	if p.exempt[action] {
		return false, 0
	}
	local := t.In(p.loc)
	threshold := local.Hour()*60 + local.Minute() - (p.startHour*60 + p.startMinute)
	if threshold <= 0 {
		return false, 0
	}
	return true, threshold
}

func parseHHMM(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return h, m, nil
}

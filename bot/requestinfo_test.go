package bot

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyunw00/attendbot/models"
)

func TestExtractRequestInfo(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/webhook", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	req.Header.Set("CF-IPCountry", "KR")
	req.Header.Set("X-Vercel-IP-City", "Seoul")

	info := ExtractRequestInfo(req, "10.0.0.1")
	if info.ClientIP != "10.0.0.1" || info.Country != "KR" || info.City != "Seoul" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestRiskNotes(t *testing.T) {
	tests := []struct {
		name      string
		info      *models.RequestInfo
		wantCount int
		wantPart  string
	}{
		{"nil info", nil, 0, ""},
		{"clean desktop from KR", &models.RequestInfo{Country: "KR", UserAgent: "curl/8.0"}, 0, ""},
		{"foreign country", &models.RequestInfo{Country: "US"}, 1, "해외"},
		{"mobile device", &models.RequestInfo{Country: "KR", UserAgent: "Mozilla/5.0 (iPhone)"}, 1, "모바일"},
		{"foreign mobile", &models.RequestInfo{Country: "JP", UserAgent: "Mozilla/5.0 (Android)"}, 2, "해외"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := RiskNotes(tt.info)
			if len(notes) != tt.wantCount {
				t.Fatalf("got %d notes %v, want %d", len(notes), notes, tt.wantCount)
			}
			if tt.wantPart != "" && !strings.Contains(strings.Join(notes, " "), tt.wantPart) {
				t.Errorf("notes %v missing %q", notes, tt.wantPart)
			}
		})
	}
}

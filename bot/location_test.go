package bot

import (
	"strings"
	"testing"
)

func TestAnalyzeLocation(t *testing.T) {
	tests := []struct {
		name         string
		lat, lng     float64
		wantVerified bool
	}{
		{"device precision", 37.566535, 126.977969, true},
		{"integer coordinates", 37, 127, false},
		{"two decimals", 37.56, 126.97, false},
		{"one coarse axis", 37.566535, 126.97, false},
		{"three decimals", 37.566, 126.977, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := AnalyzeLocation("서울시청", tt.lat, tt.lng)
			if info.Verified != tt.wantVerified {
				t.Errorf("Verified = %v, want %v", info.Verified, tt.wantVerified)
			}
			if !tt.wantVerified && info.Notes == "" {
				t.Error("unverified location should carry a note")
			}
		})
	}
}

func TestMapLinks(t *testing.T) {
	google, naver := MapLinks(37.566535, 126.977969)
	if !strings.Contains(google, "37.566535,126.977969") {
		t.Errorf("google link missing coordinates: %s", google)
	}
	if !strings.HasPrefix(naver, "https://map.naver.com/") {
		t.Errorf("unexpected naver link: %s", naver)
	}
}

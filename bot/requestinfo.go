package bot

import (
	"net/http"
	"strings"

	"github.com/hyunw00/attendbot/models"
)

// ExtractRequestInfo pulls client hints from the inbound webhook request.
// Country and city come from CDN geo headers when present.
func ExtractRequestInfo(r *http.Request, clientIP string) *models.RequestInfo {
	country := r.Header.Get("CF-IPCountry")
	if country == "" {
		country = r.Header.Get("X-Vercel-IP-Country")
	}
	city := r.Header.Get("X-Vercel-IP-City")
	return &models.RequestInfo{
		ClientIP:  clientIP,
		UserAgent: r.Header.Get("User-Agent"),
		Country:   country,
		City:      city,
	}
}

// RiskNotes annotates suspicious request traits for the confirmation message.
// A non-Korean origin is flagged high, a mobile user agent medium. Empty when
// nothing stands out.
func RiskNotes(info *models.RequestInfo) []string {
	if info == nil {
		return nil
	}
	var notes []string
	if info.Country != "" && info.Country != "KR" {
		notes = append(notes, "⚠️ 해외 접속 감지 ("+info.Country+")")
	}
	ua := strings.ToLower(info.UserAgent)
	for _, marker := range []string{"mobile", "android", "iphone"} {
		if strings.Contains(ua, marker) {
			notes = append(notes, "📱 모바일 기기 접속")
			break
		}
	}
	return notes
}

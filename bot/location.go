package bot

import (
	"fmt"
	"math"

	"github.com/hyunw00/attendbot/models"
)

// AnalyzeLocation builds a LocationInfo from reported coordinates.
// Coordinates with two decimal places or fewer are almost certainly a
// hand-dropped pin rather than a device fix, so they stay unverified.
func AnalyzeLocation(address string, lat, lng float64) *models.LocationInfo {
	info := &models.LocationInfo{
		Address:   address,
		Latitude:  lat,
		Longitude: lng,
		Verified:  true,
	}
	if coarseCoordinate(lat) || coarseCoordinate(lng) {
		info.Verified = false
		info.Notes = "선택된 위치일 가능성 있음"
	}
	return info
}

func coarseCoordinate(v float64) bool {
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

// MapLinks renders Google and Naver map URLs for a coordinate pair.
func MapLinks(lat, lng float64) (google, naver string) {
	google = fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", lat, lng)
	naver = fmt.Sprintf("https://map.naver.com/v5/search/%.6f,%.6f", lat, lng)
	return google, naver
}

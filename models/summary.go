package models

// CheckinHighlight identifies a single notable check-in row, e.g. the latest
// one of the week.
type CheckinHighlight struct {
	Name       string `json:"name"`
	Time       string `json:"time"`
	Department string `json:"department"`
}

// DepartmentStat aggregates check-ins for one department.
type DepartmentStat struct {
	TotalCheckins int              `json:"totalCheckins"`
	AverageTime   string           `json:"averageTime"`
	LatestCheckin CheckinHighlight `json:"latestCheckin"`
}

// WeeklySummary is recomputed on every call from historical rows; it is never
// authoritative.
type WeeklySummary struct {
	WeekStart          string                    `json:"weekStart"`
	WeekEnd            string                    `json:"weekEnd"`
	TotalEmployees     int                       `json:"totalEmployees"`
	TotalCheckins      int                       `json:"totalCheckins"`
	AverageCheckinTime string                    `json:"averageCheckinTime"`
	LatestCheckin      CheckinHighlight          `json:"latestCheckin"`
	DepartmentStats    map[string]DepartmentStat `json:"departmentStats"`
}

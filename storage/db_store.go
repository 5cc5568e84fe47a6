package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hyunw00/attendbot/models"
)

// DBStore keeps attendance in MySQL through gorm.
type DBStore struct {
	db  *gorm.DB
	loc *time.Location
}

func NewDBStore(db *gorm.DB, loc *time.Location) *DBStore {
	return &DBStore{db: db, loc: loc}
}

// Save upserts the user by account id and creates the attendance record.
func (s *DBStore) Save(ctx context.Context, event *models.AttendanceEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("account_id = ?", event.AccountID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				AccountID:  event.AccountID,
				Name:       event.UserInfo.Name,
				Email:      event.UserInfo.Email,
				Department: event.UserInfo.Department,
				Position:   event.UserInfo.Position,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			// refresh profile fields that may have changed upstream
			user.Name = event.UserInfo.Name
			user.Email = event.UserInfo.Email
			user.Department = event.UserInfo.Department
			user.Position = event.UserInfo.Position
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}

		record := models.Attendance{
			UserID:      user.ID,
			Action:      event.Action,
			Method:      event.Method,
			Timestamp:   event.Timestamp,
			ImageURL:    event.ImageURL,
			Notes:       event.Notes,
			IsLate:      event.IsLate,
			LateMinutes: event.LateMinutes,
		}
		if event.Location != nil {
			record.Address = event.Location.Address
			record.Latitude = event.Location.Latitude
			record.Longitude = event.Location.Longitude
			record.LocVerified = event.Location.Verified
		}
		if event.RequestInfo != nil {
			record.ClientIP = event.RequestInfo.ClientIP
		}
		return tx.Create(&record).Error
	})
}

// DayEvents queries records whose timestamp falls on the local day of t.
func (s *DBStore) DayEvents(ctx context.Context, t time.Time) ([]models.AttendanceEvent, error) {
	local := t.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	var records []models.Attendance
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.AttendanceEvent, 0, len(records))
	for _, r := range records {
		ev := models.AttendanceEvent{
			AccountID:   r.User.AccountID,
			Action:      r.Action,
			Method:      r.Method,
			Timestamp:   r.Timestamp,
			ImageURL:    r.ImageURL,
			Notes:       r.Notes,
			IsLate:      r.IsLate,
			LateMinutes: r.LateMinutes,
			UserInfo: models.UserInfo{
				Name:       r.User.Name,
				Email:      r.User.Email,
				Department: r.User.Department,
				Position:   r.User.Position,
			},
		}
		if r.Address != "" || r.Latitude != 0 || r.Longitude != 0 {
			ev.Location = &models.LocationInfo{
				Address:   r.Address,
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
				Verified:  r.LocVerified,
			}
		}
		out = append(out, ev)
	}
	return out, nil
}

package storage

import (
	"context"
	"time"

	"github.com/hyunw00/attendbot/models"
)

// Store persists attendance events. Implementations may write to a
// spreadsheet or a relational database.
type Store interface {
	Save(ctx context.Context, event *models.AttendanceEvent) error
	// DayEvents returns the events recorded on the local day containing t.
	DayEvents(ctx context.Context, t time.Time) ([]models.AttendanceEvent, error)
}

package directory

import (
	"context"
	"time"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// StaticDirectory is an in-memory Directory backed by a fixed employee list.
// Used for development and tests.
type StaticDirectory struct {
	Employees []models.EmployeeCandidate
}

func NewStaticDirectory(employees []models.EmployeeCandidate) *StaticDirectory {
	return &StaticDirectory{Employees: employees}
}

func (d *StaticDirectory) Search(ctx context.Context, fragment string) ([]models.EmployeeCandidate, error) {
	return d.Employees, nil
}

// NoCalendar is a Calendar that never finds meetings. Used when no calendar
// backend is configured.
type NoCalendar struct{}

func (NoCalendar) MeetingsFor(ctx context.Context, hostEmail string, day time.Time) ([]models.Meeting, error) {
	return nil, nil
}

// StaticCalendar serves a fixed meeting list regardless of host or day.
// Used by tests.
type StaticCalendar struct {
	Meetings []models.Meeting
	Err      error
}

func (c *StaticCalendar) MeetingsFor(ctx context.Context, hostEmail string, day time.Time) ([]models.Meeting, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Meetings, nil
}

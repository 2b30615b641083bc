// Package directory provides employee lookup and calendar access for host
// resolution and pre-scheduled visit handling.
package directory

import (
	"context"
	"time"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// Directory lists employees that can be matched against a visitor-supplied
// host name fragment.
type Directory interface {
	// Search returns the directory entries to consider for the given name
	// fragment. Implementations may return the full roster; scoring and
	// selection are the resolver's job.
	Search(ctx context.Context, fragment string) ([]models.EmployeeCandidate, error)
}

// Calendar looks up a host's meetings for a given day.
type Calendar interface {
	MeetingsFor(ctx context.Context, hostEmail string, day time.Time) ([]models.Meeting, error)
}

// Scheduler places a visit event on a host's calendar when a walk-in checks
// in.
type Scheduler interface {
	CreateEvent(ctx context.Context, hostEmail, visitorName, purpose string, start time.Time) error
}

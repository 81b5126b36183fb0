package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
)

// MeetingRunRepository defines persistence operations for pipeline run history
type MeetingRunRepository interface {
	// Create stores a finished run
	Create(ctx context.Context, run *entities.MeetingRun) error

	// FindByID retrieves a run by ID, returning nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingRun, error)

	// List retrieves the most recent runs
	List(ctx context.Context, limit, offset int) ([]*entities.MeetingRun, error)
}

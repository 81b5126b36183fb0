package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/post-meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/repositories"
)

type meetingRunRepository struct {
	db *gorm.DB
}

// NewMeetingRunRepository creates a gorm-backed run repository
func NewMeetingRunRepository(db *gorm.DB) repositories.MeetingRunRepository {
	return &meetingRunRepository{db: db}
}

func (r *meetingRunRepository) Create(ctx context.Context, run *entities.MeetingRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *meetingRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingRun, error) {
	var run entities.MeetingRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *meetingRunRepository) List(ctx context.Context, limit, offset int) ([]*entities.MeetingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*entities.MeetingRun
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingRunStatus values
const (
	MeetingRunStatusCompleted = "completed"
	MeetingRunStatusFailed    = "failed"
)

// MeetingRun is the stored record of one pipeline execution
type MeetingRun struct {
	ID         uuid.UUID                           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FilePath   string                              `json:"file_path" gorm:"type:text;not null"`
	Status     string                              `json:"status" gorm:"type:varchar(20);not null;index"`
	Transcript string                              `json:"transcript,omitempty" gorm:"type:text"`
	Insights   datatypes.JSONType[Insights]        `json:"insights" gorm:"type:jsonb"`
	Actions    datatypes.JSONSlice[DispatchResult] `json:"actions" gorm:"type:jsonb"`
	Error      string                              `json:"error,omitempty" gorm:"type:text"`
	DurationMs int64                               `json:"duration_ms"`
	CreatedAt  time.Time                           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time                           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (MeetingRun) TableName() string {
	return "meeting_runs"
}

// NewMeetingRun builds a run record from the final pipeline state
func NewMeetingRun(id uuid.UUID, state PipelineState, runErr error, elapsed time.Duration) *MeetingRun {
	run := &MeetingRun{
		ID:         id,
		FilePath:   state.FilePath(),
		Status:     MeetingRunStatusCompleted,
		Transcript: state.String(StateKeyTranscript),
		Actions:    datatypes.NewJSONSlice(state.Actions()),
		DurationMs: elapsed.Milliseconds(),
	}
	if insights, ok := state.Insights(); ok {
		run.Insights = datatypes.NewJSONType(insights)
	}
	if runErr != nil {
		run.Status = MeetingRunStatusFailed
		run.Error = runErr.Error()
	}
	return run
}

package entities

import "time"

// JobStage is one step of the fixed repair pipeline.
type JobStage string

const (
	JobStageDiagnostic JobStage = "DIAGNOSTIC"
	JobStageRepair     JobStage = "REPAIR"
	JobStageTesting    JobStage = "TESTING"
	JobStageCompletion JobStage = "COMPLETION"
)

// JobStages lists the pipeline in order.
var JobStages = []JobStage{JobStageDiagnostic, JobStageRepair, JobStageTesting, JobStageCompletion}

func ParseJobStage(s string) (JobStage, bool) {
	st := JobStage(s)
	if st.Index() < 0 {
		return "", false
	}
	return st, true
}

// Index is the position in the pipeline, or -1 for unknown stages.
func (s JobStage) Index() int {
	for i, st := range JobStages {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage; ok is false at COMPLETION.
func (s JobStage) Next() (JobStage, bool) {
	i := s.Index()
	if i < 0 || i == len(JobStages)-1 {
		return "", false
	}
	return JobStages[i+1], true
}

func (s JobStage) Before(other JobStage) bool {
	return s.Index() < other.Index()
}

func (s JobStage) Terminal() bool {
	return s == JobStageCompletion
}

type JobNote struct {
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Job is the repair work of a CONFIRMED booking. It is created with the
// confirmation and kept as history; notes are append-only.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (booking_id-index): booking_id
type Job struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Stage     JobStage  `json:"stage"`
	Notes     []JobNote `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

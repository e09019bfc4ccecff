package response

import (
	"time"

	"mecanica_booking/internal/domain/entities"
)

type JobNoteResponse struct {
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type JobResponse struct {
	ID        string            `json:"id"`
	BookingID string            `json:"booking_id"`
	Stage     string            `json:"stage"`
	Notes     []JobNoteResponse `json:"notes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func FromJob(j entities.Job) JobResponse {
	notes := make([]JobNoteResponse, 0, len(j.Notes))
	for _, n := range j.Notes {
		notes = append(notes, JobNoteResponse{AuthorID: n.AuthorID, Text: n.Text, CreatedAt: n.CreatedAt})
	}
	return JobResponse{
		ID:        j.ID,
		BookingID: j.BookingID,
		Stage:     string(j.Stage),
		Notes:     notes,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

package request

// AdvanceJobRequest moves a job forward. Without stage the job moves to the
// next one.
type AdvanceJobRequest struct {
	Stage string `json:"stage" example:"TESTING"`
}

// AddJobNoteRequest carries free text; an empty note is still recorded.
type AddJobNoteRequest struct {
	Text string `json:"text"`
}

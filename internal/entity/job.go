package entity

import "time"

type JobState string

const (
	JobStateFetching JobState = "fetching"
	JobStateSuccess  JobState = "success"
	JobStateEmpty    JobState = "empty"
	JobStateError    JobState = "error"
)

func (s JobState) String() string {
	return string(s)
}

func (s JobState) IsFinished() bool {
	return s == JobStateSuccess || s == JobStateEmpty || s == JobStateError
}

// JobMessage is one per-item status line shown to the user.
type JobMessage struct {
	OK   bool   `json:"ok"`
	Text string `json:"text"`
}

// Job is the result of one "download all" action.
type Job struct {
	ID         string           `json:"id"`
	Court      CourtComplex     `json:"court"`
	Date       time.Time        `json:"date"`
	State      JobState         `json:"state"`
	Found      int              `json:"found"`
	Done       int              `json:"done"`
	Status     string           `json:"status"`
	Messages   []JobMessage     `json:"messages"`
	Files      []DownloadedFile `json:"files"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at,omitzero"`
}

// Progress returns the processed fraction in [0, 1].
func (j *Job) Progress() float64 {
	if j.Found == 0 {
		if j.State.IsFinished() {
			return 1
		}

		return 0
	}

	return float64(j.Done) / float64(j.Found)
}

// Percent is Progress scaled to 0..100 for the progress bar.
func (j *Job) Percent() int {
	return int(j.Progress() * 100)
}

func (j *Job) DateString() string {
	return j.Date.Format(DateLayout)
}

// Clone returns a deep copy safe to hand out while the job is still running.
func (j *Job) Clone() *Job {
	c := *j
	c.Messages = make([]JobMessage, len(j.Messages))
	copy(c.Messages, j.Messages)
	c.Files = make([]DownloadedFile, len(j.Files))
	copy(c.Files, j.Files)

	return &c
}

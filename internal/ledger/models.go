package ledger

import "time"

// Entry is one sample as received from a client, before it gets a row id.
type Entry struct {
	StudentID  string
	ClassID    string
	Lat        float64
	Lon        float64
	Alt        float64
	RecordedAt string
}

// Record is a persisted ledger row.
type Record struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ClassID    string    `json:"class_id"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Alt        float64   `json:"alt"`
	RecordedAt string    `json:"recorded_at"`
	ReceivedAt time.Time `json:"received_at"`
}

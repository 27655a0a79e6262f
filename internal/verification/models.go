package verification

// LocationLog is one GPS ping as sent by a client. Altitude is optional on
// the wire; a missing value counts as 0.0 (sea level) downstream.
type LocationLog struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Alt       *float64 `json:"alt,omitempty"`
	Timestamp string   `json:"timestamp"`
}

func (l LocationLog) Altitude() float64 {
	if l.Alt == nil {
		return 0.0
	}
	return *l.Alt
}

// SubmitRequest is the batch payload delivered by the sync client: the full
// pending buffer plus the identifiers of its session.
type SubmitRequest struct {
	StudentID string        `json:"student_id"`
	ClassID   string        `json:"class_id"`
	Logs      []LocationLog `json:"logs"`
}

// Result is the presence decision returned to the caller. It is computed
// fresh for every submission and never persisted.
type Result struct {
	Message              string  `json:"message"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	MarkedPresent        bool    `json:"marked_present"`
}

// DecisionEvent is broadcast to stream subscribers after a scored submission.
type DecisionEvent struct {
	StudentID            string  `json:"student_id"`
	ClassID              string  `json:"class_id"`
	SampleCount          int     `json:"sample_count"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	MarkedPresent        bool    `json:"marked_present"`
}

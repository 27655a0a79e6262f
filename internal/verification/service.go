package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend-geoattend/internal/ledger"
	"backend-geoattend/internal/metrics"
	"backend-geoattend/internal/zone"
)

// presenceThreshold is the minimum percentage of inside samples required to
// mark a student present. The bound is inclusive.
const presenceThreshold = 70.0

var (
	ErrNoLogs          = errors.New("no logs provided")
	ErrStudentRequired = errors.New("student_id required")
	ErrZoneNotFound    = errors.New("class not found")
)

// Recorder appends received samples to the audit ledger.
type Recorder interface {
	Record(ctx context.Context, entries []ledger.Entry) error
}

// Broadcaster publishes decision events for live observers.
type Broadcaster interface {
	Broadcast(classID string, payload []byte)
}

type Service struct {
	ledger Recorder
	zones  *zone.Registry
	hub    Broadcaster
}

func NewService(rec Recorder, zones *zone.Registry, hub Broadcaster) *Service {
	return &Service{ledger: rec, zones: zones, hub: hub}
}

// Submit validates a batch, writes every sample to the ledger, and scores the
// batch against the class zone. The ledger write is unconditional: it happens
// before the zone lookup, so an unknown class still leaves its rows behind.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Result, error) {
	if req.StudentID == "" {
		metrics.ObserveSubmission("invalid")
		return Result{}, ErrStudentRequired
	}
	if len(req.Logs) == 0 {
		metrics.ObserveSubmission("invalid")
		return Result{}, ErrNoLogs
	}

	entries := make([]ledger.Entry, 0, len(req.Logs))
	for _, l := range req.Logs {
		entries = append(entries, ledger.Entry{
			StudentID:  req.StudentID,
			ClassID:    req.ClassID,
			Lat:        l.Lat,
			Lon:        l.Lon,
			Alt:        l.Altitude(),
			RecordedAt: l.Timestamp,
		})
	}
	if err := s.ledger.Record(ctx, entries); err != nil {
		metrics.ObserveSubmission("storage_error")
		return Result{}, fmt.Errorf("record logs: %w", err)
	}
	metrics.ObserveSamplesRecorded(len(entries))

	z, ok := s.zones.Lookup(req.ClassID)
	if !ok {
		metrics.ObserveSubmission("unknown_zone")
		return Result{}, ErrZoneNotFound
	}

	percentage, present := Score(req.Logs, z)
	metrics.ObserveSubmission("scored")
	metrics.ObserveDecision(present)

	if s.hub != nil {
		payload, err := json.Marshal(DecisionEvent{
			StudentID:            req.StudentID,
			ClassID:              req.ClassID,
			SampleCount:          len(req.Logs),
			AttendancePercentage: percentage,
			MarkedPresent:        present,
		})
		if err == nil {
			s.hub.Broadcast(req.ClassID, payload)
		}
	}

	return Result{
		Message:              "Logs synced to DB",
		AttendancePercentage: percentage,
		MarkedPresent:        present,
	}, nil
}

// Score computes the presence decision for a batch against a zone. It is a
// pure function of its inputs so any decision can be reproduced from the
// stored samples and the zone configuration.
func Score(logs []LocationLog, z zone.Zone) (percentage float64, present bool) {
	if len(logs) == 0 {
		return 0, false
	}

	inside := 0
	for _, l := range logs {
		if z.Contains(l.Lat, l.Lon, l.Altitude()) {
			inside++
		}
	}

	percentage = float64(inside) / float64(len(logs)) * 100
	return percentage, percentage >= presenceThreshold
}

package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"backend-geoattend/internal/agent/store"
)

// Buffer is the pending-sample store the syncer drains. Removal happens only
// for samples the server acknowledged.
type Buffer interface {
	All(ctx context.Context) ([]store.Sample, error)
	RemoveAcknowledged(ctx context.Context, ids []string) error
}

type logPayload struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Alt       float64 `json:"alt"`
	Timestamp string  `json:"timestamp"`
}

type submitPayload struct {
	StudentID string       `json:"student_id"`
	ClassID   string       `json:"class_id"`
	Logs      []logPayload `json:"logs"`
}

// Decision is the presence result the server returns on a scored batch.
// Display only; delivery correctness never depends on it.
type Decision struct {
	Message              string  `json:"message"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	MarkedPresent        bool    `json:"marked_present"`
}

// Syncer delivers the full buffered batch to the collection service. One
// attempt is in flight at a time; failed attempts leave the buffer intact
// and arm the retry policy's hold-off window.
type Syncer struct {
	buffer    Buffer
	client    *http.Client
	url       string
	studentID string
	policy    Policy

	mu        sync.Mutex
	inFlight  bool
	failures  int
	notBefore time.Time
	gaveUp    bool
	status    string
	last      *Decision
}

func New(buffer Buffer, serverURL, studentID string, policy Policy) *Syncer {
	if policy == nil {
		policy = EventDriven{}
	}
	return &Syncer{
		buffer:    buffer,
		client:    &http.Client{Timeout: 15 * time.Second},
		url:       serverURL,
		studentID: studentID,
		policy:    policy,
	}
}

// TrySync snapshots the buffer and posts it as one batch. It is a no-op when
// the buffer is empty, an attempt is already in flight, or a previous
// failure's hold-off window is still open.
func (s *Syncer) TrySync(ctx context.Context, classID string) {
	s.mu.Lock()
	if s.inFlight || s.gaveUp || time.Now().Before(s.notBefore) {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	samples, err := s.buffer.All(ctx)
	if err != nil {
		s.setStatus(fmt.Sprintf("buffer read failed: %v", err))
		return
	}
	if len(samples) == 0 {
		return
	}

	payload := submitPayload{
		StudentID: s.studentID,
		ClassID:   classID,
		Logs:      make([]logPayload, 0, len(samples)),
	}
	ids := make([]string, 0, len(samples))
	for _, sample := range samples {
		ids = append(ids, sample.ID)
		payload.Logs = append(payload.Logs, logPayload{
			Lat:       sample.Lat,
			Lon:       sample.Lon,
			Alt:       sample.Alt,
			Timestamp: sample.CapturedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		// Serialization failure: abort this attempt, keep the buffer.
		s.setStatus(fmt.Sprintf("payload encode failed: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.setStatus(fmt.Sprintf("request build failed: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordFailure(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.recordFailure(fmt.Errorf("server returned %d", resp.StatusCode))
		return
	}

	// Acknowledged: drop exactly the snapshotted samples. Captures that
	// raced this request stay buffered for the next attempt.
	if err := s.buffer.RemoveAcknowledged(ctx, ids); err != nil {
		s.setStatus(fmt.Sprintf("acknowledge cleanup failed: %v", err))
		return
	}

	var decision Decision
	s.mu.Lock()
	s.failures = 0
	s.notBefore = time.Time{}
	if err := json.NewDecoder(resp.Body).Decode(&decision); err == nil {
		s.last = &decision
		s.status = fmt.Sprintf("synced %d samples: %s", len(ids), decision.Message)
	} else {
		s.last = nil
		s.status = fmt.Sprintf("synced %d samples", len(ids))
	}
	s.mu.Unlock()
}

func (s *Syncer) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	delay, retry := s.policy.NextDelay(s.failures, err)
	if !retry {
		// Delivery pauses until Reset; the buffer itself is never dropped.
		s.gaveUp = true
		s.status = fmt.Sprintf("sync failed after %d attempts, gave up: %v", s.failures, err)
		log.Printf("sync gave up after %d attempts: %v", s.failures, err)
		return
	}
	s.notBefore = time.Now().Add(delay)
	s.status = fmt.Sprintf("sync failed (attempt %d), will retry: %v", s.failures, err)
	log.Printf("sync failed (attempt %d), buffer kept: %v", s.failures, err)
}

func (s *Syncer) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// Reset clears failure tracking so a new session starts with a clean retry
// budget.
func (s *Syncer) Reset() {
	s.mu.Lock()
	s.failures = 0
	s.notBefore = time.Time{}
	s.gaveUp = false
	s.mu.Unlock()
}

// Status returns the last human-readable sync state for display.
func (s *Syncer) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastDecision returns the most recent presence decision, or nil if the last
// acknowledged batch carried none.
func (s *Syncer) LastDecision() *Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

package verification

import (
	"context"
	"errors"
	"testing"

	"backend-geoattend/internal/ledger"
	"backend-geoattend/internal/zone"

	"github.com/pashagolub/pgxmock/v3"
)

var errStorage = errors.New("storage failure")

type captureHub struct {
	classID string
	payload []byte
	calls   int
}

func (h *captureHub) Broadcast(classID string, payload []byte) {
	h.classID = classID
	h.payload = payload
	h.calls++
}

type fakeRecorder struct {
	entries []ledger.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, entries []ledger.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func testZones() *zone.Registry {
	return zone.NewRegistry(nil)
}

func floatPtr(v float64) *float64 { return &v }

func TestSubmitRejectsEmptyBatchWithoutLedgerWrites(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(rec, testZones(), nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{StudentID: "Student_001", ClassID: "CS101"})
	if !errors.Is(err, ErrNoLogs) {
		t.Fatalf("expected ErrNoLogs, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("expected no ledger writes for empty batch")
	}
}

func TestSubmitRejectsMissingStudent(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(rec, testZones(), nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{ClassID: "CS101", Logs: []LocationLog{{Lat: 1, Lon: 2}}})
	if !errors.Is(err, ErrStudentRequired) {
		t.Fatalf("expected ErrStudentRequired, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("expected no ledger writes")
	}
}

func TestSubmitWritesLedgerBeforeScoring(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hub := &captureHub{}
	svc := NewService(ledger.NewStore(mock), testZones(), hub)

	mock.ExpectExec(`INSERT INTO attendance_logs`).
		WithArgs(pgxmock.AnyArg(), "Student_001", "CS101", 37.7749, -122.4194, 15.0, "2026-01-12T09:00:00Z").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result, err := svc.Submit(context.Background(), SubmitRequest{
		StudentID: "Student_001",
		ClassID:   "CS101",
		Logs: []LocationLog{
			{Lat: 37.7749, Lon: -122.4194, Alt: floatPtr(15.0), Timestamp: "2026-01-12T09:00:00Z"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.AttendancePercentage != 100.0 || !result.MarkedPresent {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message != "Logs synced to DB" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if hub.calls != 1 || hub.classID != "CS101" {
		t.Fatalf("expected one decision broadcast, got %d for %q", hub.calls, hub.classID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitUnknownZoneStillRecords(t *testing.T) {
	rec := &fakeRecorder{}
	hub := &captureHub{}
	svc := NewService(rec, testZones(), hub)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		StudentID: "Student_001",
		ClassID:   "UNKNOWN999",
		Logs:      []LocationLog{{Lat: 1, Lon: 2, Timestamp: "ts"}},
	})
	if !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("expected ErrZoneNotFound, got %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected ledger write despite unknown zone, got %d", len(rec.entries))
	}
	if hub.calls != 0 {
		t.Fatalf("expected no broadcast without a decision")
	}
}

func TestSubmitStorageErrorSurfaces(t *testing.T) {
	svc := NewService(&fakeRecorder{err: errStorage}, testZones(), nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		StudentID: "Student_001",
		ClassID:   "CS101",
		Logs:      []LocationLog{{Lat: 1, Lon: 2}},
	})
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSubmitDefaultsMissingAltitude(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(rec, testZones(), nil)

	result, err := svc.Submit(context.Background(), SubmitRequest{
		StudentID: "Student_001",
		ClassID:   "CS101",
		Logs:      []LocationLog{{Lat: 37.7749, Lon: -122.4194, Timestamp: "ts"}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.entries[0].Alt != 0.0 {
		t.Fatalf("expected missing altitude stored as 0.0, got %v", rec.entries[0].Alt)
	}
	// Zone center altitude is 15.0 with tolerance 5.0, so alt 0.0 is outside.
	if result.MarkedPresent {
		t.Fatalf("expected altitude default to fail the vertical check")
	}
}

func TestScoreBoundaryInclusive(t *testing.T) {
	z, _ := testZones().Lookup("CS101")

	inside := LocationLog{Lat: 37.7749, Lon: -122.4194, Alt: floatPtr(15.0)}
	outside := LocationLog{Lat: 38.0, Lon: -122.4194, Alt: floatPtr(15.0)}

	logs := make([]LocationLog, 0, 10)
	for i := 0; i < 7; i++ {
		logs = append(logs, inside)
	}
	for i := 0; i < 3; i++ {
		logs = append(logs, outside)
	}

	percentage, present := Score(logs, z)
	if percentage != 70.0 || !present {
		t.Fatalf("expected 70.0%% present, got %v %v", percentage, present)
	}

	logs[6] = outside
	percentage, present = Score(logs, z)
	if percentage != 60.0 || present {
		t.Fatalf("expected 60.0%% absent, got %v %v", percentage, present)
	}
}

func TestScoreVerticalCheckRequired(t *testing.T) {
	z, _ := testZones().Lookup("CS101")

	// Horizontally at the center, vertically 6m off with tolerance 5m.
	percentage, present := Score([]LocationLog{{Lat: 37.7749, Lon: -122.4194, Alt: floatPtr(21.0)}}, z)
	if percentage != 0.0 || present {
		t.Fatalf("expected vertical miss, got %v %v", percentage, present)
	}
}

func TestScoreEmptyBatch(t *testing.T) {
	z, _ := testZones().Lookup("CS101")
	percentage, present := Score(nil, z)
	if percentage != 0 || present {
		t.Fatalf("expected zero score for empty batch")
	}
}

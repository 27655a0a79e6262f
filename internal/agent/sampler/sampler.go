package sampler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"backend-geoattend/internal/agent/location"
	"backend-geoattend/internal/agent/store"

	"github.com/google/uuid"
)

// DefaultInterval is the capture period while a session is tracking.
const DefaultInterval = 120 * time.Second

var (
	ErrAlreadyTracking = errors.New("a session is already tracking")
	ErrNotTracking     = errors.New("no session is tracking")
)

// Session identifies the one active tracking session.
type Session struct {
	ClassID   string
	StartedAt time.Time
}

// Appender receives captured samples.
type Appender interface {
	Append(ctx context.Context, sample store.Sample) error
}

// Trigger kicks off delivery attempts.
type Trigger interface {
	TrySync(ctx context.Context, classID string)
	Reset()
}

// Sampler drives the Idle -> Tracking -> Idle session lifecycle. Start
// captures immediately and then once per interval; Stop disarms the ticker
// and fires (without awaiting) a final delivery attempt.
type Sampler struct {
	appender Appender
	source   location.Source
	syncer   Trigger
	interval time.Duration

	mu      sync.Mutex
	session *Session
	stop    chan struct{}
}

func New(appender Appender, source location.Source, syncer Trigger, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		appender: appender,
		source:   source,
		syncer:   syncer,
		interval: interval,
	}
}

// Start transitions Idle -> Tracking. Starting while already tracking is
// rejected instead of silently replacing the session.
func (s *Sampler) Start(ctx context.Context, classID string) error {
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return ErrAlreadyTracking
	}
	s.session = &Session{ClassID: classID, StartedAt: time.Now()}
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.syncer.Reset()
	s.capture(ctx, classID)

	go s.loop(ctx, classID, stop)
	return nil
}

// Stop transitions Tracking -> Idle and fires a final sync attempt. It waits
// for the trigger, not for delivery completion.
func (s *Sampler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotTracking
	}
	classID := s.session.ClassID
	close(s.stop)
	s.session = nil
	s.stop = nil
	s.mu.Unlock()

	go s.syncer.TrySync(ctx, classID)
	return nil
}

// Current returns the active session, if any.
func (s *Sampler) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

func (s *Sampler) loop(ctx context.Context, classID string, stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.capture(ctx, classID)
		}
	}
}

// capture takes one reading and buffers it. No fix means no sample for this
// tick; the pipeline stays live either way.
func (s *Sampler) capture(ctx context.Context, classID string) {
	reading, ok := s.source.Current()
	if !ok {
		return
	}

	alt := 0.0
	if reading.HasAlt {
		alt = reading.Alt
	}
	sample := store.Sample{
		ID:         uuid.NewString(),
		Lat:        reading.Lat,
		Lon:        reading.Lon,
		Alt:        alt,
		CapturedAt: time.Now(),
	}

	if err := s.appender.Append(ctx, sample); err != nil {
		log.Printf("sample append failed, reading dropped before buffering: %v", err)
		return
	}

	// Delivery must not delay the capture schedule.
	go s.syncer.TrySync(ctx, classID)
}

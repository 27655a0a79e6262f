package location

import (
	"math/rand"
	"sync"
)

// Reading is one raw positioning fix. HasAlt is false when the upstream
// source cannot resolve an altitude.
type Reading struct {
	Lat    float64
	Lon    float64
	Alt    float64
	HasAlt bool
}

// Source is the opaque positioning subsystem. Current returns false when no
// fix is available; callers skip that tick instead of erroring.
type Source interface {
	Current() (Reading, bool)
}

// Static always reports the same fix. Useful for tests and fixed-position
// devices.
type Static struct {
	Reading Reading
}

func (s Static) Current() (Reading, bool) {
	return s.Reading, true
}

// Simulator produces jittered fixes around a base point, occasionally
// reporting no fix at all, mimicking a phone GPS indoors.
type Simulator struct {
	mu sync.Mutex

	base      Reading
	jitterDeg float64
	jitterAlt float64
	dropRate  float64
	rng       *rand.Rand
}

func NewSimulator(base Reading, jitterDeg, jitterAlt, dropRate float64, seed int64) *Simulator {
	return &Simulator{
		base:      base,
		jitterDeg: jitterDeg,
		jitterAlt: jitterAlt,
		dropRate:  dropRate,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Current() (Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dropRate > 0 && s.rng.Float64() < s.dropRate {
		return Reading{}, false
	}

	return Reading{
		Lat:    s.base.Lat + (s.rng.Float64()*2-1)*s.jitterDeg,
		Lon:    s.base.Lon + (s.rng.Float64()*2-1)*s.jitterDeg,
		Alt:    s.base.Alt + (s.rng.Float64()*2-1)*s.jitterAlt,
		HasAlt: s.base.HasAlt,
	}, true
}

package location

import (
	"math"
	"testing"
)

func TestStaticAlwaysFixes(t *testing.T) {
	src := Static{Reading: Reading{Lat: 37.7749, Lon: -122.4194, Alt: 15, HasAlt: true}}
	r, ok := src.Current()
	if !ok {
		t.Fatalf("expected a fix")
	}
	if r.Lat != 37.7749 || !r.HasAlt {
		t.Fatalf("unexpected reading: %+v", r)
	}
}

func TestSimulatorJitterStaysBounded(t *testing.T) {
	base := Reading{Lat: 37.7749, Lon: -122.4194, Alt: 15, HasAlt: true}
	sim := NewSimulator(base, 0.0001, 1.0, 0, 42)

	for i := 0; i < 100; i++ {
		r, ok := sim.Current()
		if !ok {
			t.Fatalf("expected a fix with zero drop rate")
		}
		if math.Abs(r.Lat-base.Lat) > 0.0001 || math.Abs(r.Lon-base.Lon) > 0.0001 {
			t.Fatalf("jitter out of bounds: %+v", r)
		}
		if math.Abs(r.Alt-base.Alt) > 1.0 {
			t.Fatalf("altitude jitter out of bounds: %+v", r)
		}
	}
}

func TestSimulatorDropsFixes(t *testing.T) {
	sim := NewSimulator(Reading{}, 0, 0, 1.0, 7)
	if _, ok := sim.Current(); ok {
		t.Fatalf("expected no fix with drop rate 1.0")
	}
}

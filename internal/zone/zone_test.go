package zone

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContainsCenter(t *testing.T) {
	z := Zone{CenterLat: 37.7749, CenterLon: -122.4194, CenterAlt: 15.0, RadiusMeters: 50, AltToleranceMeters: 5.0}
	if !z.Contains(37.7749, -122.4194, 15.0) {
		t.Fatalf("expected center sample to be inside")
	}
}

func TestContainsRadiusExceeded(t *testing.T) {
	z := Zone{CenterLat: 37.7749, CenterLon: -122.4194, CenterAlt: 15.0, RadiusMeters: 50, AltToleranceMeters: 5.0}
	// ~60 m north of center (1 degree latitude ~ 111.195 km).
	if z.Contains(37.7749+60.0/111195.0, -122.4194, 15.0) {
		t.Fatalf("expected sample 60m away to be outside")
	}
}

func TestContainsAltitudeOutsideBand(t *testing.T) {
	z := Zone{CenterLat: 37.7749, CenterLon: -122.4194, CenterAlt: 15.0, RadiusMeters: 50, AltToleranceMeters: 5.0}
	if z.Contains(37.7749, -122.4194, 21.0) {
		t.Fatalf("expected altitude diff 6.0 > tolerance 5.0 to be outside")
	}
	if !z.Contains(37.7749, -122.4194, 20.0) {
		t.Fatalf("expected altitude diff exactly at tolerance to be inside")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	r := Load("")
	if _, ok := r.Lookup("CS101"); !ok {
		t.Fatalf("expected built-in CS101 zone")
	}
}

func TestLoadFileMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	content := `zones:
  PHY201:
    center_lat: 51.5
    center_lon: -0.12
    center_alt: 30.0
    radius_meters: 40
    alt_tolerance_meters: 4.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write zones file: %v", err)
	}

	r := Load(path)
	if r.Len() != 2 {
		t.Fatalf("expected 2 zones, got %d", r.Len())
	}
	z, ok := r.Lookup("PHY201")
	if !ok {
		t.Fatalf("expected PHY201 zone from file")
	}
	if z.RadiusMeters != 40 {
		t.Fatalf("unexpected radius: %v", z.RadiusMeters)
	}
	if _, ok := r.Lookup("CS101"); !ok {
		t.Fatalf("expected defaults to survive merge")
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := Load("/nonexistent/zones.yaml")
	if r.Len() == 0 {
		t.Fatalf("expected default zones")
	}
	if !strings.Contains(buf.String(), "using built-in zones") {
		t.Fatalf("expected fallback to be logged, got %q", buf.String())
	}
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	if err := os.WriteFile(path, []byte("zones: [not, a, map"), 0o644); err != nil {
		t.Fatalf("write zones file: %v", err)
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	r := Load(path)
	if _, ok := r.Lookup("CS101"); !ok {
		t.Fatalf("expected built-in zones after malformed file")
	}
	if !strings.Contains(buf.String(), "using built-in zones") {
		t.Fatalf("expected fallback to be logged, got %q", buf.String())
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-geoattend/internal/agent/location"
	"backend-geoattend/internal/agent/sampler"
	"backend-geoattend/internal/agent/store"
	"backend-geoattend/internal/agent/syncer"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080/submit-log", "Submission endpoint URL")
	studentID := flag.String("student", "Student_001", "Student identifier")
	classID := flag.String("class", "CS101", "Class identifier from the scanned code")
	interval := flag.Duration("interval", sampler.DefaultInterval, "Capture interval while tracking")
	dbPath := flag.String("db", "data/pending.db", "Path to the local pending-sample database")
	baseLat := flag.Float64("lat", 37.7749, "Simulated base latitude in degrees")
	baseLon := flag.Float64("lon", -122.4194, "Simulated base longitude in degrees")
	baseAlt := flag.Float64("alt", 15.0, "Simulated base altitude in meters above sea level")
	jitterDeg := flag.Float64("jitter-deg", 0.0001, "Maximum random jitter applied to lat/lon in degrees")
	jitterAlt := flag.Float64("jitter-alt", 1.0, "Maximum random jitter applied to altitude in meters")
	dropRate := flag.Float64("drop-rate", 0, "Fraction of ticks with no GPS fix, 0..1")
	backoffBase := flag.Duration("backoff-base", 0, "Retry backoff base; 0 keeps event-driven retries")
	backoffMax := flag.Duration("backoff-max", 5*time.Minute, "Retry backoff cap")
	duration := flag.Duration("duration", 0, "Session length; 0 runs until SIGINT/SIGTERM")

	flag.Parse()

	buf, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open pending store: %v", err)
	}
	defer buf.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := buf.InitSchema(ctx); err != nil {
		log.Fatalf("init pending store: %v", err)
	}

	if pending, err := buf.Count(ctx); err == nil && pending > 0 {
		log.Printf("restored %d unsynced samples from disk", pending)
	}

	source := location.NewSimulator(location.Reading{
		Lat:    *baseLat,
		Lon:    *baseLon,
		Alt:    *baseAlt,
		HasAlt: true,
	}, *jitterDeg, *jitterAlt, *dropRate, time.Now().UnixNano())

	var policy syncer.Policy = syncer.EventDriven{}
	if *backoffBase > 0 {
		policy = syncer.ExponentialBackoff{Base: *backoffBase, Max: *backoffMax}
	}
	syncClient := syncer.New(buf, *serverURL, *studentID, policy)

	samp := sampler.New(buf, source, syncClient, *interval)
	if err := samp.Start(ctx, *classID); err != nil {
		log.Fatalf("start session: %v", err)
	}
	log.Printf("tracking class %s as %s, capture interval %s", *classID, *studentID, *interval)

	if *duration > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(*duration):
		}
	} else {
		<-ctx.Done()
	}

	if err := samp.Stop(context.Background()); err != nil {
		log.Printf("stop session: %v", err)
	}
	log.Printf("session ended, final sync triggered")

	// Give the final delivery a moment before reporting.
	time.Sleep(2 * time.Second)
	if status := syncClient.Status(); status != "" {
		log.Printf("sync status: %s", status)
	}
	if d := syncClient.LastDecision(); d != nil {
		log.Printf("attendance %.1f%%, marked present: %v", d.AttendancePercentage, d.MarkedPresent)
	}
	if pending, err := buf.Count(context.Background()); err == nil && pending > 0 {
		log.Printf("%d samples still buffered, they will sync on the next run", pending)
	}
}

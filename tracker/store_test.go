package tracker

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Skip if no database connection available
	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("Skipping test: TEST_POSTGRES_CONN not set")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	// Clean up table before test
	if _, err := db.Exec("DELETE FROM sun_positions"); err != nil {
		db.Close()
		t.Fatalf("Failed to clean up table: %v", err)
	}

	return db
}

func TestSaveSamples(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	config := DefaultConfig()
	config.DeviceID = 7
	tracker := &SunTracker{
		config:  config,
		samples: &PositionSamples{},
		db:      db,
		logger:  log.New(os.Stdout, "TEST: ", log.LstdFlags),
	}

	base := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	samples := []PositionSample{
		{azimuth: 164.42, elevation: 69.35, irradiance: 0.85, ts: base},
		{azimuth: 170.10, elevation: 69.80, irradiance: 0.86, ts: base.Add(5 * time.Minute)},
	}

	cloudCoverage := 25.0
	weatherSymbol := "fair_day"

	ctx := context.Background()
	if err := tracker.saveSamples(ctx, samples, &cloudCoverage, &weatherSymbol); err != nil {
		t.Fatalf("saveSamples failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sun_positions WHERE device_id = 7").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 rows, got %d", count)
	}

	var azimuth, elevation float64
	var symbol sql.NullString
	err := db.QueryRow(
		"SELECT azimuth, elevation, weather_symbol FROM sun_positions WHERE device_id = 7 ORDER BY timestamp LIMIT 1",
	).Scan(&azimuth, &elevation, &symbol)
	if err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}

	if azimuth != 164.42 || elevation != 69.35 {
		t.Errorf("Expected azimuth 164.42 elevation 69.35, got %f %f", azimuth, elevation)
	}
	if !symbol.Valid || symbol.String != "fair_day" {
		t.Errorf("Expected weather symbol fair_day, got %v", symbol)
	}
}

func TestSaveSamples_UpsertOnConflict(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	config := DefaultConfig()
	tracker := &SunTracker{
		config:  config,
		samples: &PositionSamples{},
		db:      db,
		logger:  log.New(os.Stdout, "TEST: ", log.LstdFlags),
	}

	base := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	ctx := context.Background()

	first := []PositionSample{{azimuth: 100.0, elevation: 10.0, irradiance: 0.1, ts: base}}
	if err := tracker.saveSamples(ctx, first, nil, nil); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	// Same timestamp and device, updated values
	second := []PositionSample{{azimuth: 110.0, elevation: 12.0, irradiance: 0.15, ts: base}}
	if err := tracker.saveSamples(ctx, second, nil, nil); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sun_positions").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after upsert, got %d", count)
	}

	var azimuth float64
	if err := db.QueryRow("SELECT azimuth FROM sun_positions").Scan(&azimuth); err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}
	if azimuth != 110.0 {
		t.Errorf("Expected updated azimuth 110.0, got %f", azimuth)
	}
}

func TestSaveSamples_NoDatabase(t *testing.T) {
	tracker := NewSunTracker(DefaultConfig(), nil)

	err := tracker.saveSamples(context.Background(), []PositionSample{{ts: time.Now()}}, nil, nil)
	if err == nil {
		t.Error("Expected error when database connection is not available")
	}
}

func TestSaveSamples_EmptyIsNoop(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	tracker := &SunTracker{
		config:  DefaultConfig(),
		samples: &PositionSamples{},
		db:      db,
		logger:  log.New(os.Stdout, "TEST: ", log.LstdFlags),
	}

	if err := tracker.saveSamples(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("Empty save should succeed, got: %v", err)
	}
}

func TestRunSampleFlush_ClearsWithoutDatabase(t *testing.T) {
	config := DefaultConfig()
	tracker := NewSunTracker(config, nil)
	tracker.nowFunc = func() time.Time {
		return time.Date(2025, 6, 20, 17, 16, 0, 0, time.UTC)
	}

	// Samples inside the period ending at 17:15
	tracker.samples.AddSample(164.4, 69.3, 0.8, time.Date(2025, 6, 20, 17, 5, 0, 0, time.UTC))

	tracker.runSampleFlush(context.Background())

	if !tracker.samples.IsEmpty() {
		t.Error("Expected samples cleared when no database is configured")
	}
}

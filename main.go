// Package main provides the solar tracker service entry point and CLI interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devskill-org/solar-tracker/solpos"
	"github.com/devskill-org/solar-tracker/sunpath"
	"github.com/devskill-org/solar-tracker/tracker"
	"github.com/devskill-org/solar-tracker/trackerbus"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		date       = flag.String("date", "", "Print the sun path table for a date (YYYY-MM-DD) and exit")
		lat        = flag.Float64("lat", 0, "Override site latitude for -date")
		lon        = flag.Float64("lon", 0, "Override site longitude for -date")
		info       = flag.Bool("info", false, "Show Tracker Controller Status")
		help       = flag.Bool("help", false, "Show help message")
		serverOnly = flag.Bool("serverOnly", false, "Run only web server without periodic tasks")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := tracker.LoadConfig(*configFile)
	if err != nil {
		if *date == "" {
			fmt.Println("Error loading configuration:", err)
			return
		}
		// The day-table mode works without a config file
		config = tracker.DefaultConfig()
	}

	if *date != "" {
		runDayTable(config, *date, *lat, *lon, isFlagSet("lat"), isFlagSet("lon"))
		return
	}

	if *info {
		if err := trackerbus.ShowTrackerInfo(config.TrackerModbusAddress); err != nil {
			fmt.Println("Error:", err)
			return
		}
		return
	}

	fmt.Printf("Starting Solar Tracker with the following configuration:\n")
	fmt.Printf("  Site: %.4f°, %.4f°\n", config.Latitude, config.Longitude)
	fmt.Printf("  Position Poll Interval: %s\n", config.PositionPollInterval)
	fmt.Printf("  Steering Interval: %s\n", config.SteeringInterval)
	fmt.Printf("  Sample Flush Interval: %s\n", config.SampleFlushInterval)

	if config.DryRun {
		fmt.Printf("  Mode: DRY-RUN (setpoints will be logged only)\n")
	}
	fmt.Println()

	// Create logger
	logger := log.New(os.Stdout, "[TRACKER] ", log.LstdFlags)

	// Create tracker service
	sunTracker := tracker.NewSunTrackerWithWebServer(config, logger)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start tracker in a goroutine
	go func() {
		if err := sunTracker.Start(ctx, *serverOnly); err != nil {
			if err != context.Canceled {
				logger.Printf("Tracker error: %v", err)
			}
		}
	}()

	logger.Printf("Tracker started. Press Ctrl+C to stop...")

	// Wait for shutdown signal
	<-sigChan
	logger.Printf("Shutdown signal received, stopping tracker...")

	// Cancel context to stop tracker
	cancel()

	// Give the tracker a moment to clean up
	sunTracker.Stop()

	logger.Printf("Tracker stopped successfully")
}

// isFlagSet reports whether the named flag was passed explicitly
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// runDayTable prints the sun path for a single day at 15 minute resolution
func runDayTable(config *tracker.Config, date string, lat, lon float64, latSet, lonSet bool) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		fmt.Printf("Error: invalid date %q, expected YYYY-MM-DD\n", date)
		return
	}

	loc := solpos.Location{
		Latitude:  config.Latitude,
		Longitude: config.Longitude,
	}
	if latSet {
		loc.Latitude = lat
	}
	if lonSet {
		loc.Longitude = lon
	}

	points, err := sunpath.Sample(parsed.Year(), int(parsed.Month()), parsed.Day(), loc, 15*time.Minute)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("\nSun path for %s at %.4f°, %.4f° (hours in UT)\n\n", date, loc.Latitude, loc.Longitude)
	sunpath.WriteTable(os.Stdout, points)
	fmt.Println()
	if err := sunpath.WriteSummary(os.Stdout, points); err != nil {
		fmt.Println("Error:", err)
	}
}

func showHelp() {
	fmt.Println("Solar Tracker - Steer PV panels along the computed sun path")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  A solar tracking service that computes the apparent position of the sun")
	fmt.Println("  (azimuth and elevation) for a configured site and steers a Modbus tracker")
	fmt.Println("  controller to follow it. Computed positions are annotated with weather data")
	fmt.Println("  and persisted for yield analysis.")
	fmt.Println()
	fmt.Println("  Key Features:")
	fmt.Println("  - Sun position from date, time and site coordinates")
	fmt.Println("  - Tracker steering via Modbus TCP with wind and night stow")
	fmt.Println("  - Weather-aware irradiance estimates")
	fmt.Println("  - Position history persistence to PostgreSQL")
	fmt.Println("  - Real-time status web dashboard")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  solar-tracker [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Basic usage with default settings")
	fmt.Println("  solar-tracker")
	fmt.Println()
	fmt.Println("  # Custom configuration")
	fmt.Println("  solar-tracker --config=config.json")
	fmt.Println()
	fmt.Println("  # Print the sun path table for a date")
	fmt.Println("  solar-tracker -date 2025-06-20 -lat 43.5 -lon -80.5")
	fmt.Println()
	fmt.Println("  # Show tracker controller status")
	fmt.Println("  solar-tracker -info")
	fmt.Println()
	fmt.Println("  # Run only web server without periodic tasks")
	fmt.Println("  solar-tracker -serverOnly")
	fmt.Println()
	fmt.Println("  # Show this help")
	fmt.Println("  solar-tracker -help")
}

package trackerbus

import (
	"fmt"
)

// ShowTrackerInfo displays the current tracker controller state in a
// formatted table
func ShowTrackerInfo(trackerModbusAddress string) error {
	if trackerModbusAddress == "" {
		return fmt.Errorf("TrackerModbusAddress is not configured")
	}

	// Create TCP modbus client (TrackerModbusAddress already includes port)
	client, err := NewTCPClient(trackerModbusAddress, DefaultSlaveAddress)
	if err != nil {
		return fmt.Errorf("error connecting to tracker modbus server at %s: %w", trackerModbusAddress, err)
	}
	defer client.Close()

	status, err := client.ReadStatus()
	if err != nil {
		return fmt.Errorf("error reading tracker status: %w", err)
	}

	fmt.Println()
	fmt.Println("======================== TRACKER CONTROLLER STATUS ========================")
	fmt.Println()

	fmt.Println("POSITION")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("  Running State:                  %s\n", getTrackerState(status.State))
	fmt.Printf("  Actual Azimuth:                 %.2f°\n", status.ActualAzimuth)
	fmt.Printf("  Actual Elevation:               %.2f°\n", status.ActualElevation)
	fmt.Println()

	fmt.Println("ENVIRONMENT")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("  Motor Temperature:              %.1f °C\n", status.MotorTemperature)
	fmt.Printf("  Wind Speed:                     %.1f m/s\n", status.WindSpeed)
	fmt.Println()

	if status.Alarm1 != 0 || status.Alarm2 != 0 {
		fmt.Println("ALARMS")
		fmt.Println("--------------------------------------------------")
		fmt.Printf("  Alarm 1:                        0x%04X\n", status.Alarm1)
		fmt.Printf("  Alarm 2:                        0x%04X\n", status.Alarm2)
		fmt.Println()
	}

	fmt.Println("===========================================================================")
	fmt.Println()

	return nil
}

func getTrackerState(state uint16) string {
	switch state {
	case StateIdle:
		return "Idle"
	case StateTracking:
		return "Tracking"
	case StateStowed:
		return "Stowed"
	case StateFault:
		return "Fault"
	default:
		return fmt.Sprintf("Unknown (%d)", state)
	}
}

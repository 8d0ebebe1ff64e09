package sunpath

import (
	"fmt"
	"io"
)

// WriteTable renders the sampled path as a text table.
func WriteTable(w io.Writer, points []Point) {
	fmt.Fprintln(w, "┌───────┬───────────┬───────────┬───────────┐")
	fmt.Fprintln(w, "│ Hour  │  Azimuth  │ Elevation │  Zenith   │")
	fmt.Fprintln(w, "│       │   (deg)   │   (deg)   │   (deg)   │")
	fmt.Fprintln(w, "├───────┼───────────┼───────────┼───────────┤")
	for _, p := range points {
		hh := int(p.Hour)
		mm := int((p.Hour - float64(hh)) * 60)
		fmt.Fprintf(w, "│ %02d:%02d │  %7.2f  │  %7.2f  │  %7.2f  │\n",
			hh, mm, p.Azimuth, p.Elevation, p.Zenith)
	}
	fmt.Fprintln(w, "└───────┴───────────┴───────────┴───────────┘")
}

// WriteSummary prints the daily extrema and solar noon below the table.
func WriteSummary(w io.Writer, points []Point) error {
	ex, err := FindExtrema(points)
	if err != nil {
		return err
	}
	noon, err := SolarNoon(points)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Max Azimuth: %.2f°, Min Azimuth: %.2f°\n", ex.MaxAzimuth, ex.MinAzimuth)
	fmt.Fprintf(w, "Max Elevation: %.2f°, Min Elevation: %.2f°\n", ex.MaxElevation, ex.MinElevation)
	fmt.Fprintf(w, "Max Zenith: %.2f°, Min Zenith: %.2f°\n", ex.MaxZenith, ex.MinZenith)
	fmt.Fprintf(w, "Solar noon: %02d:%02d (elevation %.2f°)\n",
		int(noon.Hour), int((noon.Hour-float64(int(noon.Hour)))*60), noon.Elevation)
	return nil
}

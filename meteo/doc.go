// Package meteo provides a small client for the MET Norway Location
// Forecast API, trimmed to what the solar tracker needs: cloud coverage
// and weather symbols for estimating usable irradiance at a location.
//
// Basic Usage:
//
//	client := meteo.NewClient("YourApp/1.0 (your-email@example.com)")
//
//	forecast, err := client.GetCompact(meteo.QueryParams{
//		Location: meteo.Location{
//			Latitude:  43.5,
//			Longitude: -80.5,
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if current := forecast.GetCurrentWeather(); current != nil {
//		if cc := current.GetCloudCoverage(); cc != nil {
//			fmt.Printf("Cloud coverage: %.0f%%\n", *cc)
//		}
//	}
//
// The MET API requires an identifying User-Agent; requests without one
// are rejected. See https://api.met.no/weatherapi/locationforecast/2.0/documentation
package meteo

package shodan

import (
	"fmt"
	"strings"
)

// Coordinates is a geographic position
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Known port cities and their coordinates. A geocoding service would replace
// this table in a live deployment.
var portCities = map[string]Coordinates{
	"vladivostok":   {Lat: 43.1056, Lon: 131.8735},
	"san francisco": {Lat: 37.7749, Lon: -122.4194},
	"shanghai":      {Lat: 31.2304, Lon: 121.4737},
	"rotterdam":     {Lat: 51.9244, Lon: 4.4777},
	"dubai":         {Lat: 25.2048, Lon: 55.2708},
	"singapore":     {Lat: 1.3521, Lon: 103.8198},
	"long beach":    {Lat: 33.7701, Lon: -118.1937},
	"houston":       {Lat: 29.7604, Lon: -95.3698},
	"tokyo":         {Lat: 35.6762, Lon: 139.6503},
	"sydney":        {Lat: -33.8688, Lon: 151.2093},
}

// CityCoordinates resolves a port city name to coordinates, case-insensitive
func CityCoordinates(city string) (Coordinates, bool) {
	coords, ok := portCities[strings.ToLower(strings.TrimSpace(city))]
	return coords, ok
}

// GeoQuery builds a geo-bounded search query for the given city and term
func GeoQuery(city, term string, radiusKM int) (string, Coordinates, error) {
	coords, ok := CityCoordinates(city)
	if !ok {
		return "", Coordinates{}, fmt.Errorf("city %q not found in the port city database", city)
	}

	query := fmt.Sprintf("geo:%q %q", fmt.Sprintf("%g,%g,%d", coords.Lat, coords.Lon, radiusKM), term)
	return query, coords, nil
}

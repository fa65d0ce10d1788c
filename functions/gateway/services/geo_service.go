package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/golang/geo/s2"
	"github.com/ringsaturn/tzf"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

const earthRadiusMeters = 6371000.0

var (
	tzFinder     tzf.F
	tzFinderOnce sync.Once
	tzFinderErr  error
)

func getTzFinder() (tzf.F, error) {
	tzFinderOnce.Do(func() {
		tzFinder, tzFinderErr = tzf.NewDefaultFinder()
	})
	return tzFinder, tzFinderErr
}

// GetTimezone resolves the IANA timezone name for a coordinate pair, used to
// stamp community locations so event times render in local time.
func GetTimezone(lat, lng float64) (string, error) {
	finder, err := getTzFinder()
	if err != nil {
		return "", fmt.Errorf("failed to initialize timezone finder: %w", err)
	}
	name := finder.GetTimezoneName(lng, lat)
	if name == "" {
		return "", fmt.Errorf("no timezone found for (%f, %f)", lat, lng)
	}
	return name, nil
}

// DistanceMeters is the great-circle distance between two coordinate pairs.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// SortLocationsByDistance orders a tenant's locations by distance from the
// caller's point, nearest first. Locations without coordinates sort last.
func SortLocationsByDistance(locations []internal_types.Location, lat, lng float64) []internal_types.LocationWithDistance {
	withDistance := make([]internal_types.LocationWithDistance, 0, len(locations))
	for _, location := range locations {
		entry := internal_types.LocationWithDistance{Location: location}
		if location.Latitude != 0 || location.Longitude != 0 {
			entry.DistanceMeters = DistanceMeters(lat, lng, location.Latitude, location.Longitude)
		} else {
			entry.DistanceMeters = -1
		}
		withDistance = append(withDistance, entry)
	}

	sort.SliceStable(withDistance, func(i, j int) bool {
		di, dj := withDistance[i].DistanceMeters, withDistance[j].DistanceMeters
		if di < 0 {
			return false
		}
		if dj < 0 {
			return true
		}
		return di < dj
	})

	return withDistance
}

package spatial

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters

	// PlaceCellLevel is the S2 level places are indexed at (~150m cells)
	PlaceCellLevel = 16
)

// HaversineDistance calculates the great-circle distance between two points in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// ValidCoordinate reports whether lat/lon are finite and in range
func ValidCoordinate(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

// CellID returns the S2 cell id of a coordinate at PlaceCellLevel
func CellID(lat, lon float64) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon)).Parent(PlaceCellLevel)
}

// CellRange is an inclusive range of leaf cell ids covered by one cell
type CellRange struct {
	Min s2.CellID
	Max s2.CellID
}

// CoverRadius returns cell ranges that together contain every point within
// radiusMeters of the coordinate. Any place whose PlaceCellLevel cell lies in
// one of the ranges is a candidate; callers still check the exact distance.
func CoverRadius(lat, lon, radiusMeters float64) []CellRange {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	angle := s1.Angle(radiusMeters / EarthRadiusMeters)
	region := s2.CapFromCenterAngle(center, angle)

	coverer := &s2.RegionCoverer{MinLevel: 6, MaxLevel: PlaceCellLevel, MaxCells: 12}
	covering := coverer.Covering(region)

	ranges := make([]CellRange, 0, len(covering))
	for _, c := range covering {
		ranges = append(ranges, CellRange{Min: c.RangeMin(), Max: c.RangeMax()})
	}
	return ranges
}

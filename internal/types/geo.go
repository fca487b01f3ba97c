package types

import "math"

const earthRadiusMeters = 6372.8 * 1000.0

// MetersBetween returns the haversine distance between two points.
func MetersBetween(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lon1r := lon1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	lon2r := lon2 * math.Pi / 180

	dLat := lat2r - lat1r
	dLon := lon2r - lon1r
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1r)*math.Cos(lat2r)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusMeters * c
}

// AreaOf approximates the planar area in square meters of the bounding box
// spanned by the two corners: width times height, both measured with
// MetersBetween. Good enough for ranking overlapping features by size.
func AreaOf(minLat, minLon, maxLat, maxLon float64) float64 {
	width := MetersBetween(minLat, minLon, minLat, maxLon)
	height := MetersBetween(minLat, minLon, maxLat, minLon)
	return width * height
}

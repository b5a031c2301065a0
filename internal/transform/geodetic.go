package transform

import "math"

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378.137              // semi-major axis (km)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Geodetic is a WGS-84 geodetic position: latitude and longitude in radians, height
// above the ellipsoid in km.
type Geodetic struct {
	Lat, Lon, Height float64
}

// GeodeticToITRF returns the ITRF position of a geodetic point.
func GeodeticToITRF(g Geodetic) Vec3 {
	sinLat, cosLat := math.Sincos(g.Lat)
	sinLon, cosLon := math.Sincos(g.Lon)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return Vec3{
		X: (n + g.Height) * cosLat * cosLon,
		Y: (n + g.Height) * cosLat * sinLon,
		Z: (n*(1-wgs84E2) + g.Height) * sinLat,
	}
}

// ITRFToGeodetic converts an ITRF position to geodetic coordinates by fixed-point
// iteration on latitude from Bowring's initial estimate. Converges in a few
// iterations for points near the Earth and in orbit.
func ITRFToGeodetic(r Vec3) Geodetic {
	lon := math.Atan2(r.Y, r.X)
	p := math.Hypot(r.X, r.Y)

	lat := math.Atan2(r.Z, p*(1-wgs84E2))
	for i := 0; i < 6; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(r.Z+wgs84E2*n*sinLat, p)
	}

	sinLat, cosLat := math.Sincos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var h float64
	if math.Abs(cosLat) > 1e-10 {
		h = p/cosLat - n
	} else {
		h = math.Abs(r.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}
	return Geodetic{Lat: lat, Lon: lon, Height: h}
}

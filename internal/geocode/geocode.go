// Package geocode defines the optional reverse-geocoding capability
// used to turn GPS coordinates into place names.
package geocode

import "context"

// Geocoder resolves a latitude/longitude pair to a human-readable place
// name. Implementations may consult external services; callers treat
// any error as "no name available" and fall back to formatted
// coordinates.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Func adapts a function to the Geocoder interface.
type Func func(ctx context.Context, lat, lon float64) (string, error)

func (f Func) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	return f(ctx, lat, lon)
}

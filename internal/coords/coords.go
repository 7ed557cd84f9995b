// Package coords decomposes signed decimal GPS coordinates into
// degrees, minutes and seconds for display.
package coords

import (
	"fmt"
	"math"
)

// Coordinate is a signed decimal-degree value on one axis.
type Coordinate struct {
	// Degrees is the raw signed decimal value.
	Degrees float64
	// Positive and Negative name the cardinal directions for each sign.
	Positive string
	Negative string
}

// Latitude wraps v as a latitude coordinate.
func Latitude(v float64) Coordinate {
	return Coordinate{Degrees: v, Positive: "East", Negative: "West"}
}

// Longitude wraps v as a longitude coordinate.
func Longitude(v float64) Coordinate {
	return Coordinate{Degrees: v, Positive: "North", Negative: "South"}
}

// Direction returns the cardinal direction for the sign of the value.
func (c Coordinate) Direction() string {
	if c.Degrees < 0 {
		return c.Negative
	}
	return c.Positive
}

// DMS decomposes the absolute value into whole degrees, whole minutes
// and fractional seconds.
func (c Coordinate) DMS() (deg int, min int, sec float64) {
	abs := math.Abs(c.Degrees)
	deg = int(abs)
	remMin := (abs - float64(deg)) * 60
	min = int(remMin)
	sec = (remMin - float64(min)) * 60
	return deg, min, sec
}

// String formats the coordinate as `40° 42' 46.08" East`.
func (c Coordinate) String() string {
	deg, min, sec := c.DMS()
	return fmt.Sprintf("%d° %d' %.2f\" %s", deg, min, sec, c.Direction())
}

package plasmid

import (
	"math"

	"github.com/matzehuels/plasmap/pkg/errors"
)

// DefaultStartAngle puts position 0 at the top of the circle.
const DefaultStartAngle = 90.0

// Point is a rectangular coordinate in screen space (y grows downward).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Converter maps between sequence positions, angles and rectangular points
// for one sequence. It is a value type; the zero value is not usable.
type Converter struct {
	length     int
	startAngle float64
	center     Point
}

// NewConverter returns a converter for a circular sequence of the given
// length whose first base sits at startAngle degrees.
func NewConverter(length int, startAngle float64) (Converter, error) {
	if err := errors.ValidateSequenceLength(length); err != nil {
		return Converter{}, err
	}
	return Converter{length: length, startAngle: startAngle}, nil
}

// WithCenter returns a copy of c whose rectangular coordinates are relative
// to the given center.
func (c Converter) WithCenter(x, y float64) Converter {
	c.center = Point{X: x, Y: y}
	return c
}

// Length returns the sequence length in bases.
func (c Converter) Length() int { return c.length }

// StartAngle returns the angle of position 0, in degrees.
func (c Converter) StartAngle() float64 { return c.startAngle }

// Center returns the center used by PolarToRect.
func (c Converter) Center() Point { return c.center }

// PositionToAngle converts a sequence position to an angle in degrees.
func (c Converter) PositionToAngle(p int) float64 {
	return c.startAngle - (float64(p)/float64(c.length))*360
}

// LengthToAngle converts a span length in bases to an angular size, with no
// regard for where the span starts.
func (c Converter) LengthToAngle(n int) float64 {
	return (float64(n) / float64(c.length)) * 360
}

// AngleToPosition is the inverse of PositionToAngle. The angle is reduced
// modulo 360 first and the result is rounded and wrapped into [1, Length].
func (c Converter) AngleToPosition(a float64) int {
	d := math.Mod(c.startAngle-a, 360)
	if d < 0 {
		d += 360
	}
	p := int(math.Round(d / 360 * float64(c.length)))
	if p <= 0 {
		p += c.length
	}
	if p > c.length {
		p -= c.length
	}
	return p
}

// PolarToRect converts a radius and an angle (degrees, counter-clockwise
// from the horizontal) to a screen point. The y axis is flipped because
// screen coordinates grow downward.
func (c Converter) PolarToRect(r, a float64) Point {
	rad := a * math.Pi / 180
	return Point{
		X: c.center.X + r*math.Cos(rad),
		Y: c.center.Y - r*math.Sin(rad),
	}
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

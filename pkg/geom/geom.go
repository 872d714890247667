package geom

import "math"

// Logical coordinate bounds for scene positions. Content authors place
// assets in a fixed -10..+10 range on both axes, independent of the
// final render size.
const (
	LogicalMin = -10.0
	LogicalMax = 10.0
)

// Point is a position in the logical coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScreenPoint is a position in pixel space.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport maps the logical space onto a pixel container.
type Viewport struct {
	Width  float64
	Height float64
}

// ToScreen converts a logical point to pixel coordinates. Logical (0,0)
// maps to the container center; positive Y is up in logical space and
// down in screen space.
func (v Viewport) ToScreen(p Point) ScreenPoint {
	span := LogicalMax - LogicalMin
	return ScreenPoint{
		X: (p.X - LogicalMin) / span * v.Width,
		Y: (LogicalMax - p.Y) / span * v.Height,
	}
}

// MinDimension returns the smaller of the viewport's width and height.
func (v Viewport) MinDimension() float64 {
	return math.Min(v.Width, v.Height)
}

// DistanceSquared returns the squared Euclidean distance between two
// screen points. Kept squared so hit tests avoid the sqrt.
func DistanceSquared(a, b ScreenPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// InCircle reports whether p lies within radius of center.
func InCircle(p, center ScreenPoint, radius float64) bool {
	return DistanceSquared(p, center) <= radius*radius
}

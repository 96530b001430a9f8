// Package geom provides the small amount of trigonometry the worm engine
// needs: heading normalization and one Euler integration step per tick.
package geom

import "math"

// Point is a worm's floating-point position on the board.
type Point struct {
	X, Y float64
}

// Cell floors a Point to the board cell it currently occupies.
func (p Point) Cell() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// NormalizeDegrees folds deg into [0, 360).
func NormalizeDegrees(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Turn applies a turn_direction (straight=0, right=1, left=2) to heading,
// advancing by turningSpeed degrees per tick, and returns the normalized
// result.
func Turn(heading, turningSpeed int, direction uint8) int {
	switch direction {
	case 1:
		return NormalizeDegrees(heading + turningSpeed)
	case 2:
		return NormalizeDegrees(heading - turningSpeed)
	default:
		return heading
	}
}

// Step integrates one unit of motion along heading (in integer degrees)
// starting from p, matching the reference kinematics: x += cos(heading),
// y += sin(heading).
func Step(p Point, heading int) Point {
	rad := float64(heading) * math.Pi / 180.0
	return Point{X: p.X + math.Cos(rad), Y: p.Y + math.Sin(rad)}
}

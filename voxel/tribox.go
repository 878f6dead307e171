package voxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// satEps biases the separating-axis tests toward overlap so that grazing
// contact between a triangle and a cell still marks the cell. Conservative
// rasterization may over-report but must never leave holes in the shell, or
// the flood fill would leak into the interior.
const satEps = 1e-9

var boxAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// separated reports whether axis separates the triangle (v0,v1,v2), given in
// box-centered coordinates, from the cube of the given half extent.
func separated(axis, v0, v1, v2 mgl64.Vec3, half float64) bool {
	p0 := axis.Dot(v0)
	p1 := axis.Dot(v1)
	p2 := axis.Dot(v2)
	mn := math.Min(p0, math.Min(p1, p2))
	mx := math.Max(p0, math.Max(p1, p2))
	rad := half * (math.Abs(axis.X()) + math.Abs(axis.Y()) + math.Abs(axis.Z()))
	return mn > rad+satEps || mx < -rad-satEps
}

// TriBoxOverlap is the 13-axis separating-axis test between a triangle and an
// axis-aligned cube centered at center with the given half extent: the three
// box axes, the triangle normal, and the nine edge cross axes.
func TriBoxOverlap(center mgl64.Vec3, half float64, tri Triangle) bool {
	v0 := tri[0].Sub(center)
	v1 := tri[1].Sub(center)
	v2 := tri[2].Sub(center)

	for _, axis := range boxAxes {
		if separated(axis, v0, v1, v2, half) {
			return false
		}
	}

	e0 := v1.Sub(v0)
	e1 := v2.Sub(v1)
	e2 := v0.Sub(v2)

	normal := e0.Cross(e1)
	if normal.Len() > 0 && separated(normal, v0, v1, v2, half) {
		return false
	}

	for _, edge := range [3]mgl64.Vec3{e0, e1, e2} {
		for _, axis := range boxAxes {
			cross := axis.Cross(edge)
			// Edge parallel to the box axis: the cross product carries no
			// separation information.
			if cross.Len() < satEps {
				continue
			}
			if separated(cross, v0, v1, v2, half) {
				return false
			}
		}
	}
	return true
}

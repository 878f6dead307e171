package voxel

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is three points in projected world-metric coordinates
// (x east, y north, z up). No winding order is assumed.
type Triangle [3]mgl64.Vec3

// Mesh is the triangle soup of one feature. It is not required to be
// manifold and may contain duplicate or degenerate triangles.
type Mesh struct {
	Triangles []Triangle
}

// areaEps is the minimum triangle area, relative to the unit cell, below
// which a triangle is treated as degenerate and skipped.
const areaEps = 1e-9

// DefaultMaxCells is the default bounding-volume ceiling for one feature.
// The flood fill visits the exterior-connected complement of the bounding
// box, so memory use is proportional to this figure.
const DefaultMaxCells = uint64(1) << 27

var (
	// ErrCoordOverflow reports input coordinates too large for the lattice.
	// This is fatal: it indicates corrupt or wildly out-of-range geometry.
	ErrCoordOverflow = errors.New("lattice coordinate overflow")

	// ErrVolumeCeiling reports a mesh whose bounding volume exceeds the
	// configured cell ceiling. The feature is skipped, not aborted.
	ErrVolumeCeiling = errors.New("bounding volume exceeds cell ceiling")
)

// Stats counts what the rasterizer did with one mesh.
type Stats struct {
	Triangles        int // triangles seen
	SkippedTriangles int // dropped as degenerate
	Occupied         int // cells in the set after rasterization
	Hollowed         int // cells removed as interior
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	e0 := t[1].Sub(t[0])
	e1 := t[2].Sub(t[0])
	return e0.Cross(e1).Len() / 2
}

func latticeFloor(f float64) (int32, error) {
	if math.IsNaN(f) || f < float64(math.MinInt32)+1 || f > float64(math.MaxInt32)-1 {
		return 0, fmt.Errorf("%w: %.3f", ErrCoordOverflow, f)
	}
	return int32(math.Floor(f)), nil
}

func meshBounds(m Mesh) (Box, error) {
	mn := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	mx := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, t := range m.Triangles {
		for _, v := range t {
			for i := 0; i < 3; i++ {
				mn[i] = math.Min(mn[i], v[i])
				mx[i] = math.Max(mx[i], v[i])
			}
		}
	}
	var b Box
	var err error
	if b.Min.X, err = latticeFloor(mn.X()); err != nil {
		return b, err
	}
	if b.Min.Y, err = latticeFloor(mn.Y()); err != nil {
		return b, err
	}
	if b.Min.Z, err = latticeFloor(mn.Z()); err != nil {
		return b, err
	}
	if b.Max.X, err = latticeFloor(mx.X()); err != nil {
		return b, err
	}
	if b.Max.Y, err = latticeFloor(mx.Y()); err != nil {
		return b, err
	}
	if b.Max.Z, err = latticeFloor(mx.Z()); err != nil {
		return b, err
	}
	return b, nil
}

// Rasterize enumerates every lattice cell intersected by the mesh surface.
// An empty mesh yields an empty set. Meshes whose integer bounding box spans
// more than maxCells cells are rejected with ErrVolumeCeiling.
func Rasterize(m Mesh, maxCells uint64) (Set, Stats, error) {
	stats := Stats{Triangles: len(m.Triangles)}
	set := NewSet()
	if len(m.Triangles) == 0 {
		return set, stats, nil
	}
	if maxCells == 0 {
		maxCells = DefaultMaxCells
	}

	bounds, err := meshBounds(m)
	if err != nil {
		return nil, stats, err
	}
	if cells := bounds.Cells(); cells > maxCells {
		return nil, stats, fmt.Errorf("%w: %d cells", ErrVolumeCeiling, cells)
	}

	for _, tri := range m.Triangles {
		if tri.Area() < areaEps {
			stats.SkippedTriangles++
			continue
		}
		if err := rasterizeTriangle(set, tri); err != nil {
			return nil, stats, err
		}
	}
	stats.Occupied = set.Len()
	return set, stats, nil
}

func rasterizeTriangle(set Set, tri Triangle) error {
	var lo, hi [3]int32
	for i := 0; i < 3; i++ {
		mn := math.Min(tri[0][i], math.Min(tri[1][i], tri[2][i]))
		mx := math.Max(tri[0][i], math.Max(tri[1][i], tri[2][i]))
		var err error
		// Widen by one epsilon so cells merely touched by the triangle are
		// still candidates; the axis test makes the final call.
		if lo[i], err = latticeFloor(mn - satEps); err != nil {
			return err
		}
		if hi[i], err = latticeFloor(mx + satEps); err != nil {
			return err
		}
	}
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				c := Coord{x, y, z}
				if set.Has(c) {
					continue
				}
				center := mgl64.Vec3{float64(x) + 0.5, float64(y) + 0.5, float64(z) + 0.5}
				if TriBoxOverlap(center, 0.5, tri) {
					set.Add(c)
				}
			}
		}
	}
	return nil
}

// Voxelize rasterizes the mesh surface and hollows the result to a shell.
func Voxelize(m Mesh, maxCells uint64) (Set, Stats, error) {
	set, stats, err := Rasterize(m, maxCells)
	if err != nil {
		return nil, stats, err
	}
	stats.Hollowed = Hollow(set)
	stats.Occupied = set.Len()
	return set, stats, nil
}

package voxel

import "sort"

// Coord addresses one unit cube of the global lattice.
type Coord struct {
	X, Y, Z int32
}

// Set is a sparse occupancy index over lattice coordinates. Only presence is
// tracked; the single material tag is applied downstream.
type Set map[Coord]struct{}

func NewSet() Set { return make(Set) }

func (s Set) Add(c Coord)      { s[c] = struct{}{} }
func (s Set) Remove(c Coord)   { delete(s, c) }
func (s Set) Has(c Coord) bool { _, ok := s[c]; return ok }
func (s Set) Len() int         { return len(s) }

// Sorted returns the coordinates in (z, y, x) ascending order. Iterating a
// map is nondeterministic, so anything that must be reproducible goes
// through here.
func (s Set) Sorted() []Coord {
	out := make([]Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

// Box is an inclusive axis-aligned lattice bounding box.
type Box struct {
	Min, Max Coord
}

// Bounds returns the bounding box of the set and false when the set is empty.
func (s Set) Bounds() (Box, bool) {
	if len(s) == 0 {
		return Box{}, false
	}
	first := true
	var b Box
	for c := range s {
		if first {
			b.Min, b.Max = c, c
			first = false
			continue
		}
		if c.X < b.Min.X {
			b.Min.X = c.X
		}
		if c.Y < b.Min.Y {
			b.Min.Y = c.Y
		}
		if c.Z < b.Min.Z {
			b.Min.Z = c.Z
		}
		if c.X > b.Max.X {
			b.Max.X = c.X
		}
		if c.Y > b.Max.Y {
			b.Max.Y = c.Y
		}
		if c.Z > b.Max.Z {
			b.Max.Z = c.Z
		}
	}
	return b, true
}

// Grow expands the box by n cells on every side.
func (b Box) Grow(n int32) Box {
	return Box{
		Min: Coord{b.Min.X - n, b.Min.Y - n, b.Min.Z - n},
		Max: Coord{b.Max.X + n, b.Max.Y + n, b.Max.Z + n},
	}
}

// Contains reports whether c lies inside the box (inclusive).
func (b Box) Contains(c Coord) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

// Cells returns the number of lattice cells the box spans.
func (b Box) Cells() uint64 {
	if b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z {
		return 0
	}
	dx := uint64(b.Max.X-b.Min.X) + 1
	dy := uint64(b.Max.Y-b.Min.Y) + 1
	dz := uint64(b.Max.Z-b.Min.Z) + 1
	return dx * dy * dz
}

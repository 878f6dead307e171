package voxel

var neighbors6 = [6]Coord{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Hollow removes interior cells from the set in place and returns how many
// were dropped.
//
// A 6-connected flood fill runs over the complement of the set, seeded from
// the outer faces of the bounding box grown by one cell, so the fill always
// starts in open air. Occupied cells with no fill-reached neighbor are
// enclosed on all sides, can never be seen, and are removed. Non-manifold or
// self-intersecting input may leave spurious disconnected cells; those sit in
// reachable air and are retained as-is.
func Hollow(set Set) int {
	bounds, ok := set.Bounds()
	if !ok {
		return 0
	}
	outer := bounds.Grow(1)

	reached := make(map[Coord]struct{})
	// Explicit queue: recursion depth over a building-sized box would
	// overflow the stack.
	queue := make([]Coord, 0, 1024)
	seed := func(c Coord) {
		if _, ok := reached[c]; ok {
			return
		}
		if set.Has(c) {
			return
		}
		reached[c] = struct{}{}
		queue = append(queue, c)
	}
	for x := outer.Min.X; x <= outer.Max.X; x++ {
		for y := outer.Min.Y; y <= outer.Max.Y; y++ {
			seed(Coord{x, y, outer.Min.Z})
			seed(Coord{x, y, outer.Max.Z})
		}
	}
	for x := outer.Min.X; x <= outer.Max.X; x++ {
		for z := outer.Min.Z; z <= outer.Max.Z; z++ {
			seed(Coord{x, outer.Min.Y, z})
			seed(Coord{x, outer.Max.Y, z})
		}
	}
	for y := outer.Min.Y; y <= outer.Max.Y; y++ {
		for z := outer.Min.Z; z <= outer.Max.Z; z++ {
			seed(Coord{outer.Min.X, y, z})
			seed(Coord{outer.Max.X, y, z})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range neighbors6 {
			next := Coord{cur.X + d.X, cur.Y + d.Y, cur.Z + d.Z}
			if !outer.Contains(next) {
				continue
			}
			seed(next)
		}
	}

	removed := 0
	for c := range set {
		exposed := false
		for _, d := range neighbors6 {
			n := Coord{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
			if _, ok := reached[n]; ok {
				exposed = true
				break
			}
		}
		if !exposed {
			delete(set, c)
			removed++
		}
	}
	return removed
}

package voxel

import "testing"

func solidBox(min, max int32) Set {
	s := NewSet()
	for z := min; z <= max; z++ {
		for y := min; y <= max; y++ {
			for x := min; x <= max; x++ {
				s.Add(Coord{x, y, z})
			}
		}
	}
	return s
}

func TestHollow_SolidCube(t *testing.T) {
	// A solid 5^3 block keeps its 98 boundary cells and loses the 27 interior
	// ones.
	s := solidBox(0, 4)
	removed := Hollow(s)
	if removed != 27 {
		t.Fatalf("removed %d cells, want 27", removed)
	}
	if s.Len() != 98 {
		t.Fatalf("shell has %d cells, want 98", s.Len())
	}
	if s.Has(Coord{2, 2, 2}) {
		t.Fatalf("interior cell survived hollowing")
	}
	if !s.Has(Coord{0, 0, 0}) || !s.Has(Coord{4, 4, 4}) {
		t.Fatalf("boundary cell removed")
	}
}

func TestHollow_SingleCell(t *testing.T) {
	s := NewSet()
	s.Add(Coord{7, -3, 12})
	if removed := Hollow(s); removed != 0 {
		t.Fatalf("removed %d cells from a single-cell set", removed)
	}
	if !s.Has(Coord{7, -3, 12}) {
		t.Fatalf("single cell removed")
	}
}

func TestHollow_Empty(t *testing.T) {
	s := NewSet()
	if removed := Hollow(s); removed != 0 {
		t.Fatalf("removed %d cells from the empty set", removed)
	}
}

func TestHollow_AlreadyShell(t *testing.T) {
	s := solidBox(0, 4)
	Hollow(s)
	if removed := Hollow(s); removed != 0 {
		t.Fatalf("second hollow removed %d cells", removed)
	}
	if s.Len() != 98 {
		t.Fatalf("shell shrank to %d cells", s.Len())
	}
}

func TestHollow_ThinSlab(t *testing.T) {
	// A one-cell-thick slab has no interior.
	s := NewSet()
	for y := int32(0); y < 10; y++ {
		for x := int32(0); x < 10; x++ {
			s.Add(Coord{x, y, 0})
		}
	}
	if removed := Hollow(s); removed != 0 {
		t.Fatalf("removed %d cells from a slab", removed)
	}
	if s.Len() != 100 {
		t.Fatalf("slab has %d cells, want 100", s.Len())
	}
}

package voxel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestTriBoxOverlap_Through(t *testing.T) {
	// Triangle crossing the cell through its center.
	tri := Triangle{
		{-1, -1, 0.5},
		{2, -1, 0.5},
		{0.5, 2, 0.5},
	}
	if !TriBoxOverlap(mgl64.Vec3{0.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected overlap for triangle through cell center")
	}
}

func TestTriBoxOverlap_Disjoint(t *testing.T) {
	tri := Triangle{
		{5, 5, 5},
		{6, 5, 5},
		{5, 6, 5},
	}
	if TriBoxOverlap(mgl64.Vec3{0.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected no overlap for distant triangle")
	}
}

func TestTriBoxOverlap_TouchingFace(t *testing.T) {
	// Triangle lying exactly in the x=1 plane touches both neighbor cells.
	tri := Triangle{
		{1, 0.2, 0.2},
		{1, 0.8, 0.2},
		{1, 0.5, 0.8},
	}
	if !TriBoxOverlap(mgl64.Vec3{0.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected overlap with cell left of the plane")
	}
	if !TriBoxOverlap(mgl64.Vec3{1.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected overlap with cell right of the plane")
	}
	if TriBoxOverlap(mgl64.Vec3{2.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected no overlap two cells away")
	}
}

func TestTriBoxOverlap_VertexOnly(t *testing.T) {
	// Only one vertex pokes into the cell.
	tri := Triangle{
		{0.9, 0.9, 0.9},
		{3, 3, 0.9},
		{3, 0.9, 3},
	}
	if !TriBoxOverlap(mgl64.Vec3{0.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected overlap for vertex inside cell")
	}
}

func TestTriBoxOverlap_EdgeCross(t *testing.T) {
	// Large triangle whose plane misses the cell entirely; the 9 edge cross
	// axes must separate it.
	tri := Triangle{
		{-10, -10, 3},
		{10, -10, 3},
		{0, 10, 3},
	}
	if TriBoxOverlap(mgl64.Vec3{0.5, 0.5, 0.5}, 0.5, tri) {
		t.Fatalf("expected separation on the normal axis")
	}
}

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshvox/mesh2mca/voxel"
)

func TestFloorDivNegatives(t *testing.T) {
	assert.Equal(t, ChunkKey{0, 0}, ChunkOf(BlockPos{0, 0, 0}))
	assert.Equal(t, ChunkKey{0, 0}, ChunkOf(BlockPos{15, 0, 15}))
	assert.Equal(t, ChunkKey{1, -1}, ChunkOf(BlockPos{16, 0, -1}))
	assert.Equal(t, ChunkKey{-1, -2}, ChunkOf(BlockPos{-16, 0, -17}))

	assert.Equal(t, RegionKey{0, 0}, RegionOf(ChunkKey{0, 0}))
	assert.Equal(t, RegionKey{0, 0}, RegionOf(ChunkKey{31, 31}))
	assert.Equal(t, RegionKey{1, -1}, RegionOf(ChunkKey{32, -1}))
	assert.Equal(t, RegionKey{-1, -2}, RegionOf(ChunkKey{-32, -33}))
}

func TestComputeOrigin(t *testing.T) {
	assert.Equal(t, Origin{}, ComputeOrigin(nil))

	bounds := []voxel.Box{
		{Min: voxel.Coord{X: 100, Y: 200, Z: 0}, Max: voxel.Coord{X: 110, Y: 210, Z: 50}},
		{Min: voxel.Coord{X: 140, Y: 180, Z: 0}, Max: voxel.Coord{X: 160, Y: 220, Z: 10}},
	}
	// Midpoint of x in [100, 160] and y in [180, 220].
	assert.Equal(t, Origin{X: 130, Y: 200}, ComputeOrigin(bounds))
}

func TestTransform(t *testing.T) {
	a := NewAccumulator(Origin{X: 10, Y: 20}, 0)
	// East stays x, height becomes y, north flips to negative z.
	assert.Equal(t, BlockPos{0, 0, 0}, a.Transform(voxel.Coord{X: 10, Y: 20, Z: 0}))
	assert.Equal(t, BlockPos{5, 7, -3}, a.Transform(voxel.Coord{X: 15, Y: 23, Z: 7}))
	assert.Equal(t, BlockPos{-2, -64, 4}, a.Transform(voxel.Coord{X: 8, Y: 16, Z: -64}))

	shifted := NewAccumulator(Origin{}, -60)
	assert.Equal(t, BlockPos{0, -60, 0}, shifted.Transform(voxel.Coord{X: 0, Y: 0, Z: 0}))
}

func TestMergeClipsBuildEnvelope(t *testing.T) {
	a := NewAccumulator(Origin{}, 0)
	set := voxel.NewSet()
	set.Add(voxel.Coord{X: 0, Y: 0, Z: MinBuildY - 1}) // below
	set.Add(voxel.Coord{X: 0, Y: 0, Z: MinBuildY})     // lowest legal
	set.Add(voxel.Coord{X: 0, Y: 0, Z: MaxBuildY - 1}) // highest legal
	set.Add(voxel.Coord{X: 0, Y: 0, Z: MaxBuildY})     // above

	stats := a.Merge(set)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 2, stats.Clipped)
	assert.Equal(t, 2, a.Blocks())
}

func TestMergeFeatureEntirelyAboveCeiling(t *testing.T) {
	a := NewAccumulator(Origin{}, 0)
	set := voxel.NewSet()
	for z := int32(MaxBuildY); z < MaxBuildY+10; z++ {
		set.Add(voxel.Coord{X: 0, Y: 0, Z: z})
	}
	stats := a.Merge(set)
	assert.Equal(t, 0, stats.Added)
	assert.Equal(t, 10, stats.Clipped)
	assert.Equal(t, 0, a.Blocks())
	assert.Empty(t, a.Regions())
}

func TestMergeOrderIndependent(t *testing.T) {
	s1 := voxel.NewSet()
	s2 := voxel.NewSet()
	for i := int32(0); i < 20; i++ {
		s1.Add(voxel.Coord{X: i, Y: 0, Z: 10})
		s2.Add(voxel.Coord{X: i + 10, Y: 0, Z: 10}) // overlaps s1 on [10, 20)
	}

	ab := NewAccumulator(Origin{}, 0)
	ab.Merge(s1)
	ab.Merge(s2)
	ba := NewAccumulator(Origin{}, 0)
	ba.Merge(s2)
	ba.Merge(s1)

	require.Equal(t, 30, ab.Blocks())
	require.Equal(t, ab.Blocks(), ba.Blocks())
	require.Equal(t, ab.Regions(), ba.Regions())
	for _, key := range ab.Regions() {
		va, vb := ab.Region(key), ba.Region(key)
		require.NotNil(t, va)
		require.NotNil(t, vb)
		assert.Equal(t, va.Len(), vb.Len())
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := NewAccumulator(Origin{}, 0)
	set := voxel.NewSet()
	set.Add(voxel.Coord{X: 1, Y: 2, Z: 3})
	set.Add(voxel.Coord{X: 4, Y: 5, Z: 6})
	a.Merge(set)
	a.Merge(set)
	assert.Equal(t, 2, a.Blocks())
}

func TestRegionsSortedAndViews(t *testing.T) {
	a := NewAccumulator(Origin{}, 0)
	set := voxel.NewSet()
	// Blocks in regions (0,0), (1,0) and (0,-1). The z coordinate of the
	// lattice is height here; vary x and y to move across regions.
	set.Add(voxel.Coord{X: 0, Y: 0, Z: 0})      // region (0, 0)
	set.Add(voxel.Coord{X: 512, Y: 0, Z: 0})    // region (1, 0)
	set.Add(voxel.Coord{X: 0, Y: -1, Z: 0})     // blockZ = 1, still (0, 0)
	set.Add(voxel.Coord{X: 0, Y: 1, Z: 0})      // blockZ = -1, region (0, -1)
	a.Merge(set)

	keys := a.Regions()
	require.Equal(t, []RegionKey{{0, -1}, {0, 0}, {1, 0}}, keys)

	v := a.Region(RegionKey{0, 0})
	require.NotNil(t, v)
	assert.Equal(t, 2, v.Len())

	assert.Nil(t, a.Region(RegionKey{9, 9}))
}

func TestEachChunkGroupsContiguously(t *testing.T) {
	a := NewAccumulator(Origin{}, 0)
	set := voxel.NewSet()
	// Two chunks within region (0, 0), several blocks each.
	for i := int32(0); i < 4; i++ {
		set.Add(voxel.Coord{X: i, Y: 0, Z: 0})      // chunk (0, 0)
		set.Add(voxel.Coord{X: 16 + i, Y: 0, Z: 0}) // chunk (1, 0)
	}
	a.Merge(set)

	v := a.Region(RegionKey{0, 0})
	require.NotNil(t, v)

	var keys []ChunkKey
	total := 0
	v.EachChunk(func(key ChunkKey, blocks []BlockPos) {
		keys = append(keys, key)
		total += len(blocks)
		for _, p := range blocks {
			assert.Equal(t, key, ChunkOf(p))
		}
	})
	assert.Equal(t, []ChunkKey{{0, 0}, {1, 0}}, keys)
	assert.Equal(t, v.Len(), total)
}

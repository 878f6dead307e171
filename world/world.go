// Package world merges per-feature occupancy sets into a single sparse
// volume in block space and partitions it along region and chunk boundaries
// for the region encoder.
package world

import (
	"math"
	"sort"
	"sync"

	"github.com/meshvox/mesh2mca/voxel"
)

const (
	// ChunkSpan is the horizontal extent of one chunk in blocks.
	ChunkSpan = 16
	// RegionSpan is the extent of one region in chunks.
	RegionSpan = 32

	// MinBuildY and MaxBuildY bound the vertical build envelope; MaxBuildY
	// is exclusive.
	MinBuildY = -64
	MaxBuildY = 320
)

// BlockPos is a block-space coordinate: x east, y up, z south.
type BlockPos struct {
	X, Y, Z int32
}

// ChunkKey identifies a chunk by its absolute chunk coordinates.
type ChunkKey struct {
	X, Z int32
}

// RegionKey identifies a region file.
type RegionKey struct {
	X, Z int32
}

// Origin is the projected lattice coordinate that maps to block (0, 0).
type Origin struct {
	X, Y int32
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ChunkOf returns the chunk holding the block.
func ChunkOf(p BlockPos) ChunkKey {
	return ChunkKey{floorDiv(p.X, ChunkSpan), floorDiv(p.Z, ChunkSpan)}
}

// RegionOf returns the region holding the chunk.
func RegionOf(c ChunkKey) RegionKey {
	return RegionKey{floorDiv(c.X, RegionSpan), floorDiv(c.Z, RegionSpan)}
}

// ComputeOrigin centers the merged output near the lattice origin: the
// midpoint of the horizontal extent across all feature bounds.
func ComputeOrigin(bounds []voxel.Box) Origin {
	if len(bounds) == 0 {
		return Origin{}
	}
	minX, maxX := int32(math.MaxInt32), int32(math.MinInt32)
	minY, maxY := int32(math.MaxInt32), int32(math.MinInt32)
	for _, b := range bounds {
		if b.Min.X < minX {
			minX = b.Min.X
		}
		if b.Max.X > maxX {
			maxX = b.Max.X
		}
		if b.Min.Y < minY {
			minY = b.Min.Y
		}
		if b.Max.Y > maxY {
			maxY = b.Max.Y
		}
	}
	return Origin{
		X: int32(math.Floor(float64(minX+maxX) / 2)),
		Y: int32(math.Floor(float64(minY+maxY) / 2)),
	}
}

// MergeStats reports what one merge call did.
type MergeStats struct {
	Added   int // blocks recorded (overlaps with earlier features count too)
	Clipped int // blocks outside the vertical build envelope
}

type shard struct {
	mu     sync.Mutex
	blocks map[BlockPos]struct{}
}

// Accumulator is the global occupancy volume, sharded by region so that
// concurrent merges into disjoint regions never contend on one lock.
type Accumulator struct {
	origin  Origin
	yOffset int32

	mu     sync.RWMutex // guards the shard map, not shard contents
	shards map[RegionKey]*shard
}

// NewAccumulator returns an empty accumulator. yOffset is added to every
// block's vertical coordinate before clipping.
func NewAccumulator(origin Origin, yOffset int32) *Accumulator {
	return &Accumulator{
		origin:  origin,
		yOffset: yOffset,
		shards:  make(map[RegionKey]*shard),
	}
}

// Transform maps a projected lattice coordinate to block space: the origin
// shifts east/north to zero, height becomes y, and north flips to negative z
// so the output faces the same way as the source geography.
func (a *Accumulator) Transform(c voxel.Coord) BlockPos {
	return BlockPos{
		X: c.X - a.origin.X,
		Y: c.Z + a.yOffset,
		Z: -(c.Y - a.origin.Y),
	}
}

func (a *Accumulator) shardFor(key RegionKey) *shard {
	a.mu.RLock()
	s, ok := a.shards[key]
	a.mu.RUnlock()
	if ok {
		return s
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok = a.shards[key]; ok {
		return s
	}
	s = &shard{blocks: make(map[BlockPos]struct{})}
	a.shards[key] = s
	return s
}

// Merge folds one feature's occupancy set into the volume. Overlapping
// claims resolve to an idempotent union, so the result is independent of
// merge order. Blocks outside the build envelope are dropped and counted.
func (a *Accumulator) Merge(set voxel.Set) MergeStats {
	var stats MergeStats
	// Bucket per region first so each shard lock is taken once per call.
	buckets := make(map[RegionKey][]BlockPos)
	for c := range set {
		p := a.Transform(c)
		if p.Y < MinBuildY || p.Y >= MaxBuildY {
			stats.Clipped++
			continue
		}
		key := RegionOf(ChunkOf(p))
		buckets[key] = append(buckets[key], p)
		stats.Added++
	}
	for key, blocks := range buckets {
		s := a.shardFor(key)
		s.mu.Lock()
		for _, p := range blocks {
			s.blocks[p] = struct{}{}
		}
		s.mu.Unlock()
	}
	return stats
}

// Blocks returns the total number of occupied blocks.
func (a *Accumulator) Blocks() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, s := range a.shards {
		s.mu.Lock()
		n += len(s.blocks)
		s.mu.Unlock()
	}
	return n
}

// Regions lists every non-empty region in deterministic (z, x) order.
func (a *Accumulator) Regions() []RegionKey {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]RegionKey, 0, len(a.shards))
	for k, s := range a.shards {
		s.mu.Lock()
		n := len(s.blocks)
		s.mu.Unlock()
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Z != keys[j].Z {
			return keys[i].Z < keys[j].Z
		}
		return keys[i].X < keys[j].X
	})
	return keys
}

// Region returns a read-only view of one region, or nil when it is empty.
// Call only after all merges have completed.
func (a *Accumulator) Region(key RegionKey) *RegionView {
	a.mu.RLock()
	s, ok := a.shards[key]
	a.mu.RUnlock()
	if !ok {
		return nil
	}
	s.mu.Lock()
	blocks := make([]BlockPos, 0, len(s.blocks))
	for p := range s.blocks {
		blocks = append(blocks, p)
	}
	s.mu.Unlock()
	if len(blocks) == 0 {
		return nil
	}
	// Sorting by (chunk, y, z, x) makes each chunk a contiguous run, so the
	// chunk grouping is a property of the order rather than a second copy of
	// the coordinates.
	sort.Slice(blocks, func(i, j int) bool {
		ci, cj := ChunkOf(blocks[i]), ChunkOf(blocks[j])
		if ci.Z != cj.Z {
			return ci.Z < cj.Z
		}
		if ci.X != cj.X {
			return ci.X < cj.X
		}
		a, b := blocks[i], blocks[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
	return &RegionView{Key: key, blocks: blocks}
}

// RegionView is an immutable, chunk-grouped view of one region's blocks.
type RegionView struct {
	Key    RegionKey
	blocks []BlockPos
}

// Len returns the number of blocks in the region.
func (v *RegionView) Len() int { return len(v.blocks) }

// EachChunk calls fn once per non-empty chunk, in ascending (z, x) chunk
// order, with the chunk's blocks as a shared subslice that must not be
// mutated.
func (v *RegionView) EachChunk(fn func(key ChunkKey, blocks []BlockPos)) {
	start := 0
	for start < len(v.blocks) {
		key := ChunkOf(v.blocks[start])
		end := start + 1
		for end < len(v.blocks) && ChunkOf(v.blocks[end]) == key {
			end++
		}
		fn(key, v.blocks[start:end])
		start = end
	}
}

package anvil

import (
	"errors"
	"fmt"
)

// DataVersion is the chunk NBT revision this writer targets (1.18 layout).
const DataVersion = 2731

const (
	// minSectionY and maxSectionY bound the vertical section stack.
	minSectionY = -4
	maxSectionY = 19
	sectionSpan = 16

	// MinY and MaxY bound block heights; MaxY is exclusive.
	MinY = minSectionY * sectionSpan
	MaxY = (maxSectionY + 1) * sectionSpan
)

// ErrOutOfBounds reports block coordinates outside the chunk or the build
// envelope.
var ErrOutOfBounds = errors.New("block coordinates out of bounds")

// Chunk is a 16x16 column of sections addressed by absolute chunk
// coordinates.
type Chunk struct {
	X, Z     int32
	sections [maxSectionY - minSectionY + 1]*Section
}

// NewChunk returns an all-air chunk at the given chunk coordinates.
func NewChunk(x, z int32) *Chunk {
	return &Chunk{X: x, Z: z}
}

// SetBlock places a block at chunk-local x/z (0..15) and absolute height y.
func (c *Chunk) SetBlock(x, y, z int, b Block) error {
	if x < 0 || x > 15 || z < 0 || z > 15 || y < MinY || y >= MaxY {
		return fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfBounds, x, y, z)
	}
	sy := floorDivInt(y, sectionSpan)
	slot := sy - minSectionY
	if c.sections[slot] == nil {
		c.sections[slot] = newSection(int8(sy))
	}
	c.sections[slot].Set(x, y-sy*sectionSpan, z, b)
	return nil
}

// Empty reports whether no section holds a non-air block.
func (c *Chunk) Empty() bool {
	for _, s := range c.sections {
		if s != nil && !s.Empty() {
			return false
		}
	}
	return true
}

func floorDivInt(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// MarshalNBT serializes the chunk tag tree, uncompressed. All-air sections
// are omitted; the save format treats missing sections as air.
func (c *Chunk) MarshalNBT() []byte {
	var w nbtWriter
	w.BeginCompound("")
	w.Int("DataVersion", DataVersion)

	count := int32(0)
	for _, s := range c.sections {
		if s != nil && !s.Empty() {
			count++
		}
	}
	w.BeginList("sections", tagCompound, count)
	for _, s := range c.sections {
		if s == nil || s.Empty() {
			continue
		}
		s.writeNBT(&w)
		w.EndCompound()
	}

	w.BeginList("block_entities", tagCompound, 0)
	w.BeginList("block_ticks", tagCompound, 0)
	w.BeginList("fluid_ticks", tagCompound, 0)
	w.Long("LastUpdate", 0)
	w.Long("InhabitedTime", 0)
	w.Byte("isLightOn", 1)
	w.Int("xPos", c.X)
	w.Int("yPos", -3)
	w.Int("zPos", c.Z)
	w.String("Status", "full")
	w.EndCompound()
	return w.Bytes()
}

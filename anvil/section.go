package anvil

import "math/bits"

// sectionVolume is the cell count of one 16x16x16 section.
const sectionVolume = 4096

// Section stores the blocks of one 16-tall band as palette indices.
// Index 0 is always air.
type Section struct {
	y       int8
	cells   [sectionVolume]uint16
	palette []Block
	lookup  map[Block]uint16
	nonAir  int
}

func newSection(y int8) *Section {
	s := &Section{y: y, palette: []Block{Air}, lookup: map[Block]uint16{Air: 0}}
	return s
}

// cellIndex follows the section cell ordering of the save format.
func cellIndex(x, y, z int) int {
	return y<<8 | z<<4 | x
}

func (s *Section) paletteIndex(b Block) uint16 {
	if i, ok := s.lookup[b]; ok {
		return i
	}
	i := uint16(len(s.palette))
	s.palette = append(s.palette, b)
	s.lookup[b] = i
	return i
}

// Set places a block at section-local coordinates, each in 0..15.
func (s *Section) Set(x, y, z int, b Block) {
	i := cellIndex(x, y, z)
	was := s.cells[i]
	s.cells[i] = s.paletteIndex(b)
	if was == 0 && s.cells[i] != 0 {
		s.nonAir++
	} else if was != 0 && s.cells[i] == 0 {
		s.nonAir--
	}
}

// Empty reports whether every cell is air.
func (s *Section) Empty() bool { return s.nonAir == 0 }

// bitsPerIndex is the packed index width: wide enough to address the
// palette, never below 4.
func bitsPerIndex(paletteLen int) uint {
	n := uint(bits.Len(uint(paletteLen - 1)))
	if n < 4 {
		n = 4
	}
	return n
}

// packedStates packs the 4096 palette indices at fixed width into 64-bit
// words, low bits first. Entries never straddle a word: a word holding fewer
// whole entries than 64 bits allows is padded, per the post-20w17a storage.
func (s *Section) packedStates() []int64 {
	width := bitsPerIndex(len(s.palette))
	perWord := 64 / width
	words := make([]int64, 0, (sectionVolume+int(perWord)-1)/int(perWord))
	var word uint64
	var n uint
	for _, idx := range s.cells {
		word |= uint64(idx) << (width * n)
		n++
		if n == perWord {
			words = append(words, int64(word))
			word, n = 0, 0
		}
	}
	if n > 0 {
		words = append(words, int64(word))
	}
	return words
}

// writeNBT appends the section compound: Y, biomes, block_states.
func (s *Section) writeNBT(w *nbtWriter) {
	w.Byte("Y", s.y)

	w.BeginCompound("biomes")
	w.BeginList("palette", tagString, 1)
	w.RawString("minecraft:plains")
	w.EndCompound()

	w.BeginCompound("block_states")
	w.BeginList("palette", tagCompound, int32(len(s.palette)))
	for _, b := range s.palette {
		w.String("Name", b.Name())
		w.EndCompound()
	}
	w.LongArray("data", s.packedStates())
	w.EndCompound()
}

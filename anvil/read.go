package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/klauspost/compress/zlib"
)

// SectionData is one decoded 16-tall band.
type SectionData struct {
	Y       int8
	Palette []string
	// Cells holds the palette index of every cell in section cell order.
	Cells [sectionVolume]uint16
}

// ChunkData is one decoded chunk payload plus its sector table entry.
type ChunkData struct {
	X, Z         int32
	SectorOffset uint32
	SectorCount  uint32
	Sections     []SectionData
}

// RegionData is a decoded region file.
type RegionData struct {
	X, Z   int32
	Chunks []ChunkData
}

// Has reports whether the block at section-local coordinates is non-air.
func (s *SectionData) Has(x, y, z int) bool {
	return s.Cells[cellIndex(x, y, z)] != 0
}

// ReadRegion decodes a region file image: the sector table, then every
// occupied chunk's compressed NBT payload down to section palettes and cell
// indices. Chunks appear in slot order.
func ReadRegion(data []byte, x, z int32) (*RegionData, error) {
	if len(data) < headerSectors*SectorSize {
		return nil, fmt.Errorf("region file too short: %d bytes", len(data))
	}
	if len(data)%SectorSize != 0 {
		return nil, fmt.Errorf("region file not sector aligned: %d bytes", len(data))
	}
	out := &RegionData{X: x, Z: z}
	for slot := 0; slot < slotCount; slot++ {
		entry := binary.BigEndian.Uint32(data[slot*4:])
		if entry == 0 {
			continue
		}
		offset := entry >> 8
		sectors := entry & 0xFF
		start := int(offset) * SectorSize
		end := start + int(sectors)*SectorSize
		if start < headerSectors*SectorSize || end > len(data) {
			return nil, fmt.Errorf("slot %d: sector range [%d, %d) outside file", slot, offset, offset+sectors)
		}
		chunk, err := readChunkPayload(data[start:end])
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", slot, err)
		}
		chunk.SectorOffset = offset
		chunk.SectorCount = sectors
		out.Chunks = append(out.Chunks, *chunk)
	}
	return out, nil
}

// ReadRegionFile reads a .mca file, taking the region coordinates from its
// name.
func ReadRegionFile(path string) (*RegionData, error) {
	x, z, err := ParseRegionName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadRegion(data, x, z)
}

var regionNameRe = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// ParseRegionName extracts the region coordinates from "r.<x>.<z>.mca".
func ParseRegionName(name string) (x, z int32, err error) {
	m := regionNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, fmt.Errorf("not a region file name: %q", name)
	}
	xi, _ := strconv.ParseInt(m[1], 10, 32)
	zi, _ := strconv.ParseInt(m[2], 10, 32)
	return int32(xi), int32(zi), nil
}

func readChunkPayload(sector []byte) (*ChunkData, error) {
	if len(sector) < 5 {
		return nil, io.ErrUnexpectedEOF
	}
	length := binary.BigEndian.Uint32(sector[:4])
	if length < 1 || int(length)+4 > len(sector) {
		return nil, fmt.Errorf("payload length %d outside sector range", length)
	}
	if scheme := sector[4]; scheme != compressionZlib {
		return nil, fmt.Errorf("unsupported compression scheme %d", scheme)
	}
	zr, err := zlib.NewReader(bytes.NewReader(sector[5 : 4+length]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	root, err := parseNBT(raw)
	if err != nil {
		return nil, err
	}
	return chunkFromNBT(root)
}

func chunkFromNBT(root nbtCompound) (*ChunkData, error) {
	chunk := &ChunkData{}
	x, ok := root["xPos"].(int32)
	if !ok {
		return nil, fmt.Errorf("chunk NBT missing xPos")
	}
	z, ok := root["zPos"].(int32)
	if !ok {
		return nil, fmt.Errorf("chunk NBT missing zPos")
	}
	chunk.X, chunk.Z = x, z

	sections, ok := root["sections"].([]any)
	if !ok {
		return nil, fmt.Errorf("chunk NBT missing sections list")
	}
	for i, el := range sections {
		sec, ok := el.(nbtCompound)
		if !ok {
			return nil, fmt.Errorf("section %d: not a compound", i)
		}
		decoded, err := sectionFromNBT(sec)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		chunk.Sections = append(chunk.Sections, *decoded)
	}
	return chunk, nil
}

func sectionFromNBT(sec nbtCompound) (*SectionData, error) {
	y, ok := sec["Y"].(int8)
	if !ok {
		return nil, fmt.Errorf("missing Y")
	}
	states, ok := sec["block_states"].(nbtCompound)
	if !ok {
		return nil, fmt.Errorf("missing block_states")
	}
	paletteTags, ok := states["palette"].([]any)
	if !ok || len(paletteTags) == 0 {
		return nil, fmt.Errorf("missing palette")
	}
	out := &SectionData{Y: y}
	for _, tag := range paletteTags {
		entry, ok := tag.(nbtCompound)
		if !ok {
			return nil, fmt.Errorf("palette entry not a compound")
		}
		name, ok := entry["Name"].(string)
		if !ok {
			return nil, fmt.Errorf("palette entry missing Name")
		}
		out.Palette = append(out.Palette, name)
	}

	// A single-entry palette may omit the data array entirely.
	words, _ := states["data"].([]int64)
	if len(paletteTags) == 1 && len(words) == 0 {
		return out, nil
	}

	width := bitsPerIndex(len(out.Palette))
	perWord := 64 / width
	want := (sectionVolume + int(perWord) - 1) / int(perWord)
	if len(words) != want {
		return nil, fmt.Errorf("data length %d, want %d words", len(words), want)
	}
	mask := uint64(1)<<width - 1
	for i := 0; i < sectionVolume; i++ {
		word := uint64(words[i/int(perWord)])
		shift := width * uint(i%int(perWord))
		idx := uint16(word >> shift & mask)
		if int(idx) >= len(out.Palette) {
			return nil, fmt.Errorf("cell %d: palette index %d out of range", i, idx)
		}
		out.Cells[i] = idx
	}
	return out, nil
}

package anvil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
)

const (
	// SectorSize is the alignment unit of the region file data area.
	SectorSize = 4096

	// regionSpan is the region extent in chunks; slots = regionSpan².
	regionSpan = 32
	slotCount  = regionSpan * regionSpan

	// headerSectors covers the locations table and the timestamp table.
	headerSectors = 2

	// compressionZlib is the payload compression scheme identifier.
	compressionZlib = 2

	// maxChunkSectors is the largest sector count the one-byte length field
	// of a location entry can represent.
	maxChunkSectors = 255
)

// ErrChunkTooLarge reports a chunk whose compressed payload cannot be
// addressed by the sector table. The chunk is never truncated.
var ErrChunkTooLarge = errors.New("compressed chunk exceeds maximum sector count")

// Region is a 32x32 chunk grid destined for one .mca file.
type Region struct {
	X, Z   int32
	chunks [slotCount]*Chunk
}

// NewRegion returns an empty region at the given region coordinates.
func NewRegion(x, z int32) *Region {
	return &Region{X: x, Z: z}
}

// FileName returns the conventional file name, e.g. "r.0.-1.mca".
func (r *Region) FileName() string {
	return fmt.Sprintf("r.%d.%d.mca", r.X, r.Z)
}

// slotOf maps chunk-in-region coordinates to the row-major slot index used
// by the sector table.
func slotOf(localX, localZ int32) int {
	return int(localZ*regionSpan + localX)
}

// Chunk returns the chunk at absolute chunk coordinates, creating it when
// absent. Coordinates outside this region are an error.
func (r *Region) Chunk(chunkX, chunkZ int32) (*Chunk, error) {
	localX := chunkX - r.X*regionSpan
	localZ := chunkZ - r.Z*regionSpan
	if localX < 0 || localX >= regionSpan || localZ < 0 || localZ >= regionSpan {
		return nil, fmt.Errorf("%w: chunk (%d, %d) not in region (%d, %d)",
			ErrOutOfBounds, chunkX, chunkZ, r.X, r.Z)
	}
	slot := slotOf(localX, localZ)
	if r.chunks[slot] == nil {
		r.chunks[slot] = NewChunk(chunkX, chunkZ)
	}
	return r.chunks[slot], nil
}

// SetBlock places a block at absolute block coordinates.
func (r *Region) SetBlock(x, y, z int32, b Block) error {
	c, err := r.Chunk(floorDiv32(x, 16), floorDiv32(z, 16))
	if err != nil {
		return err
	}
	return c.SetBlock(int(mod32(x, 16)), int(y), int(mod32(z, 16)), b)
}

func floorDiv32(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod32(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func zlibCompress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func padToSector(b []byte) []byte {
	if rem := len(b) % SectorSize; rem != 0 {
		b = append(b, make([]byte, SectorSize-rem)...)
	}
	return b
}

// Marshal encodes the whole region file: the locations table, the timestamp
// table stamped with buildTime for every occupied slot, and the sector-
// aligned data area. Slots are visited in fixed row-major order, so the same
// region content always produces identical bytes.
func (r *Region) Marshal(buildTime uint32) ([]byte, error) {
	locations := make([]byte, SectorSize)
	timestamps := make([]byte, SectorSize)
	var data bytes.Buffer

	offset := uint32(headerSectors)
	for slot, c := range r.chunks {
		if c == nil || c.Empty() {
			continue
		}
		compressed, err := zlibCompress(c.MarshalNBT())
		if err != nil {
			return nil, fmt.Errorf("chunk (%d, %d): %w", c.X, c.Z, err)
		}
		payload := make([]byte, 5, 5+len(compressed))
		binary.BigEndian.PutUint32(payload[:4], uint32(len(compressed))+1)
		payload[4] = compressionZlib
		payload = append(payload, compressed...)
		payload = padToSector(payload)

		sectors := uint32(len(payload) / SectorSize)
		if sectors > maxChunkSectors {
			return nil, fmt.Errorf("chunk (%d, %d): %w: %d sectors",
				c.X, c.Z, ErrChunkTooLarge, sectors)
		}

		binary.BigEndian.PutUint32(locations[slot*4:], offset<<8|sectors)
		binary.BigEndian.PutUint32(timestamps[slot*4:], buildTime)
		data.Write(payload)
		offset += sectors
	}

	out := make([]byte, 0, 2*SectorSize+data.Len())
	out = append(out, locations...)
	out = append(out, timestamps...)
	out = append(out, data.Bytes()...)
	return out, nil
}

// WriteFile marshals the region and writes it under its conventional name in
// dir. The file appears atomically: bytes go to a temporary sibling first and
// a failed write never leaves a partial file under the final name.
func (r *Region) WriteFile(dir string, buildTime uint32) (string, error) {
	data, err := r.Marshal(buildTime)
	if err != nil {
		return "", err
	}
	final := filepath.Join(dir, r.FileName())
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return final, nil
}

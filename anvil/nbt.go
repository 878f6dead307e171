// Package anvil serializes sparse block volumes into Minecraft Java Edition
// region files (.mca) and reads them back for verification.
package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// NBT tag type ids.
const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

// nbtWriter builds an uncompressed NBT document. Tags are emitted in the
// exact order methods are called, which keeps the payload byte-stable.
type nbtWriter struct {
	buf bytes.Buffer
}

func (w *nbtWriter) header(typ byte, name string) {
	w.buf.WriteByte(typ)
	w.writeString(name)
}

func (w *nbtWriter) writeString(s string) {
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(s)))
	w.buf.Write(l[:])
	w.buf.WriteString(s)
}

// BeginCompound opens a named compound. Pass an empty name for the root.
func (w *nbtWriter) BeginCompound(name string) {
	w.header(tagCompound, name)
}

// EndCompound closes the innermost compound.
func (w *nbtWriter) EndCompound() {
	w.buf.WriteByte(tagEnd)
}

func (w *nbtWriter) Byte(name string, v int8) {
	w.header(tagByte, name)
	w.buf.WriteByte(byte(v))
}

func (w *nbtWriter) Int(name string, v int32) {
	w.header(tagInt, name)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *nbtWriter) Long(name string, v int64) {
	w.header(tagLong, name)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *nbtWriter) String(name, v string) {
	w.header(tagString, name)
	w.writeString(v)
}

// BeginList opens a named list of n elements of elem type. Elements are then
// written headerless: compounds via bare compound bodies closed with
// EndCompound, strings via RawString, and so on.
func (w *nbtWriter) BeginList(name string, elem byte, n int32) {
	w.header(tagList, name)
	w.buf.WriteByte(elem)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	w.buf.Write(b[:])
}

// RawString writes a headerless string, for string list elements.
func (w *nbtWriter) RawString(v string) {
	w.writeString(v)
}

func (w *nbtWriter) LongArray(name string, vs []int64) {
	w.header(tagLongArray, name)
	var b [8]byte
	binary.BigEndian.PutUint32(b[:4], uint32(len(vs)))
	w.buf.Write(b[:4])
	for _, v := range vs {
		binary.BigEndian.PutUint64(b[:], uint64(v))
		w.buf.Write(b[:])
	}
}

// Bytes returns the document written so far.
func (w *nbtWriter) Bytes() []byte { return w.buf.Bytes() }

// nbtCompound is a decoded compound: tag name to decoded value. Decoded
// values are int8/int16/int32/int64/float32/float64/string, []byte,
// []int32, []int64, []any for lists and nbtCompound for nested compounds.
type nbtCompound map[string]any

type nbtReader struct {
	data []byte
	pos  int
}

func (r *nbtReader) readN(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *nbtReader) readString() (string, error) {
	b, err := r.readN(2)
	if err != nil {
		return "", err
	}
	s, err := r.readN(int(binary.BigEndian.Uint16(b)))
	if err != nil {
		return "", err
	}
	return string(s), nil
}

func (r *nbtReader) readPayload(typ byte) (any, error) {
	switch typ {
	case tagByte:
		b, err := r.readN(1)
		if err != nil {
			return nil, err
		}
		return int8(b[0]), nil
	case tagShort:
		b, err := r.readN(2)
		if err != nil {
			return nil, err
		}
		return int16(binary.BigEndian.Uint16(b)), nil
	case tagInt:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		return int32(binary.BigEndian.Uint32(b)), nil
	case tagLong:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	case tagFloat:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	case tagDouble:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case tagByteArray:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		return r.readN(int(int32(binary.BigEndian.Uint32(b))))
	case tagString:
		return r.readString()
	case tagList:
		b, err := r.readN(5)
		if err != nil {
			return nil, err
		}
		elem := b[0]
		n := int(int32(binary.BigEndian.Uint32(b[1:])))
		out := make([]any, 0, max(n, 0))
		for i := 0; i < n; i++ {
			v, err := r.readPayload(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case tagCompound:
		out := make(nbtCompound)
		for {
			b, err := r.readN(1)
			if err != nil {
				return nil, err
			}
			if b[0] == tagEnd {
				return out, nil
			}
			name, err := r.readString()
			if err != nil {
				return nil, err
			}
			v, err := r.readPayload(b[0])
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
	case tagIntArray:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		n := int(int32(binary.BigEndian.Uint32(b)))
		raw, err := r.readN(n * 4)
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case tagLongArray:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		n := int(int32(binary.BigEndian.Uint32(b)))
		raw, err := r.readN(n * 8)
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.BigEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown NBT tag type %d", typ)
	}
}

// parseNBT decodes an uncompressed NBT document rooted at a compound.
func parseNBT(data []byte) (nbtCompound, error) {
	r := &nbtReader{data: data}
	b, err := r.readN(1)
	if err != nil {
		return nil, err
	}
	if b[0] != tagCompound {
		return nil, fmt.Errorf("NBT root is tag type %d, want compound", b[0])
	}
	if _, err := r.readString(); err != nil {
		return nil, err
	}
	v, err := r.readPayload(tagCompound)
	if err != nil {
		return nil, err
	}
	return v.(nbtCompound), nil
}

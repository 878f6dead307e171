package anvil

import (
	"bytes"
	"testing"
)

func TestNBTRoundtrip(t *testing.T) {
	var w nbtWriter
	w.BeginCompound("")
	w.Int("DataVersion", 2731)
	w.Byte("flag", 1)
	w.Long("LastUpdate", -7)
	w.String("Status", "full")
	w.LongArray("data", []int64{0x1122334455667788, -1})
	w.BeginCompound("nested")
	w.BeginList("palette", tagString, 2)
	w.RawString("minecraft:air")
	w.RawString("minecraft:stone")
	w.EndCompound()
	w.BeginList("empty", tagCompound, 0)
	w.EndCompound()

	root, err := parseNBT(w.Bytes())
	if err != nil {
		t.Fatalf("parseNBT failed: %v", err)
	}
	if v := root["DataVersion"]; v != int32(2731) {
		t.Fatalf("DataVersion = %v", v)
	}
	if v := root["flag"]; v != int8(1) {
		t.Fatalf("flag = %v", v)
	}
	if v := root["LastUpdate"]; v != int64(-7) {
		t.Fatalf("LastUpdate = %v", v)
	}
	if v := root["Status"]; v != "full" {
		t.Fatalf("Status = %v", v)
	}
	data, ok := root["data"].([]int64)
	if !ok || len(data) != 2 || data[0] != 0x1122334455667788 || data[1] != -1 {
		t.Fatalf("data = %v", root["data"])
	}
	nested, ok := root["nested"].(nbtCompound)
	if !ok {
		t.Fatalf("nested = %T", root["nested"])
	}
	pal, ok := nested["palette"].([]any)
	if !ok || len(pal) != 2 || pal[0] != "minecraft:air" || pal[1] != "minecraft:stone" {
		t.Fatalf("palette = %v", nested["palette"])
	}
	if l, ok := root["empty"].([]any); !ok || len(l) != 0 {
		t.Fatalf("empty list = %v", root["empty"])
	}
}

func TestNBTListLayout(t *testing.T) {
	// A named string list is: type, name, element type, big-endian count.
	var w nbtWriter
	w.BeginList("p", tagString, 1)
	w.RawString("x")
	want := []byte{
		tagList, 0, 1, 'p',
		tagString, 0, 0, 0, 1,
		0, 1, 'x',
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("list bytes = % x, want % x", w.Bytes(), want)
	}
}

func TestParseNBTRejectsNonCompoundRoot(t *testing.T) {
	if _, err := parseNBT([]byte{tagByte, 0, 0, 5}); err == nil {
		t.Fatalf("expected error for non-compound root")
	}
}

func TestParseNBTTruncated(t *testing.T) {
	var w nbtWriter
	w.BeginCompound("")
	w.Int("x", 1)
	w.EndCompound()
	full := w.Bytes()
	if _, err := parseNBT(full[:len(full)-3]); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

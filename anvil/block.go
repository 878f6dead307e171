package anvil

import (
	"fmt"
	"strings"
)

// Block is a namespaced block state. Properties are not modeled; every
// block this writer emits is a bare state.
type Block struct {
	Namespace string
	ID        string
}

// Air is palette index 0 of every section.
var Air = Block{"minecraft", "air"}

// Stone is the default material for occupied cells.
var Stone = Block{"minecraft", "stone"}

// NewBlock parses "namespace:id"; a missing namespace defaults to minecraft.
func NewBlock(name string) (Block, error) {
	ns, id, found := strings.Cut(name, ":")
	if !found {
		return Block{"minecraft", name}, nil
	}
	if ns == "" || id == "" || strings.Contains(id, ":") {
		return Block{}, fmt.Errorf("invalid block name %q", name)
	}
	return Block{ns, id}, nil
}

// Name returns the namespaced identifier, e.g. "minecraft:stone".
func (b Block) Name() string {
	return b.Namespace + ":" + b.ID
}

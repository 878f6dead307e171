package utils

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/meshvox/mesh2mca/voxel"
)

// OriginOverride pins the projected lattice coordinate that maps to block
// (0, 0) instead of deriving it from the input extent.
type OriginOverride struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
}

// Options configures a conversion run.
type Options struct {
	// Workers bounds both worker pools. Zero means one per CPU.
	Workers int `yaml:"workers"`
	// BuildTime is the epoch-second timestamp stamped on every occupied
	// chunk slot. Fixed per run so re-encoding is byte-identical.
	BuildTime uint32 `yaml:"build_time"`
	// Block is the material for occupied cells, e.g. "minecraft:stone".
	Block string `yaml:"block"`
	// MaxCells is the per-feature bounding-volume ceiling.
	MaxCells uint64 `yaml:"max_cells"`
	// YOffset shifts all block heights, e.g. to sink terrain below sea level.
	YOffset int32 `yaml:"y_offset"`
	// Origin optionally overrides the derived world origin.
	Origin *OriginOverride `yaml:"origin"`
}

// DefaultOptions returns the options used when no config file is given.
func DefaultOptions() Options {
	return Options{
		Workers:  runtime.NumCPU(),
		Block:    "minecraft:stone",
		MaxCells: voxel.DefaultMaxCells,
	}
}

// LoadOptions reads a YAML options file over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse %s: %w", path, err)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Block == "" {
		opts.Block = "minecraft:stone"
	}
	if opts.MaxCells == 0 {
		opts.MaxCells = voxel.DefaultMaxCells
	}
	return opts, nil
}

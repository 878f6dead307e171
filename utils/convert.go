package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/meshvox/mesh2mca/anvil"
	"github.com/meshvox/mesh2mca/mesh"
	"github.com/meshvox/mesh2mca/voxel"
	"github.com/meshvox/mesh2mca/world"
)

var log = logrus.StandardLogger()

// FeatureReport is the per-feature outcome of a run.
type FeatureReport struct {
	ID               string
	Triangles        int
	SkippedTriangles int
	Blocks           int
	Hollowed         int
	Clipped          int
	Skipped          bool
	SkipReason       string
}

// RegionReport is the per-region outcome of a run.
type RegionReport struct {
	Key    world.RegionKey
	Path   string
	Chunks int
	Blocks int
	// Digest is the xxhash64 of the written file, for idempotence checks.
	Digest uint64
}

// Summary is what a conversion run did.
type Summary struct {
	Features []FeatureReport
	Regions  []RegionReport
	Blocks   int
	Failures []error
}

// RunConvert voxelizes every feature in the given glTF inputs, merges them
// into one world volume, and writes region files under <outDir>/region.
// Features are voxelized and regions encoded on bounded worker pools; the
// merge into the accumulator is the only synchronization point. Fatal
// region or chunk errors are collected, reported individually, and returned
// as one joined error alongside the partial summary.
func RunConvert(ctx context.Context, inputs []string, outDir string, opts Options) (*Summary, error) {
	block, err := anvil.NewBlock(opts.Block)
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxCells == 0 {
		opts.MaxCells = voxel.DefaultMaxCells
	}

	var features []mesh.Feature
	for _, path := range inputs {
		log.WithField("file", path).Info("loading features")
		fs, err := mesh.LoadFeatures(path)
		if err != nil {
			return nil, err
		}
		features = append(features, fs...)
	}
	log.WithField("features", len(features)).Info("voxelizing")

	sets := make([]voxel.Set, len(features))
	reports := make([]FeatureReport, len(features))
	fatals := make([]error, len(features))

	rasterPool := pond.NewPool(opts.Workers, pond.WithContext(ctx))
	for i := range features {
		i := i
		rasterPool.Submit(func() {
			f := features[i]
			set, stats, err := voxel.Voxelize(f.Mesh, opts.MaxCells)
			r := FeatureReport{
				ID:               f.ID,
				Triangles:        stats.Triangles,
				SkippedTriangles: stats.SkippedTriangles,
				Hollowed:         stats.Hollowed,
			}
			switch {
			case errors.Is(err, voxel.ErrVolumeCeiling):
				r.Skipped = true
				r.SkipReason = err.Error()
				log.WithField("feature", f.ID).Warn(err.Error())
			case err != nil:
				fatals[i] = fmt.Errorf("feature %s: %w", f.ID, err)
			default:
				r.Blocks = set.Len()
				sets[i] = set
				if stats.SkippedTriangles > 0 {
					log.WithFields(logrus.Fields{
						"feature": f.ID, "skipped": stats.SkippedTriangles,
					}).Warn("degenerate triangles skipped")
				}
			}
			reports[i] = r
		})
	}
	rasterPool.StopAndWait()
	for _, err := range fatals {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	origin := resolveOrigin(sets, opts)
	acc := world.NewAccumulator(origin, opts.YOffset)

	mergePool := pond.NewPool(opts.Workers, pond.WithContext(ctx))
	for i := range sets {
		i := i
		if sets[i] == nil {
			continue
		}
		mergePool.Submit(func() {
			stats := acc.Merge(sets[i])
			reports[i].Clipped = stats.Clipped
			if stats.Clipped > 0 {
				log.WithFields(logrus.Fields{
					"feature": reports[i].ID, "clipped": stats.Clipped,
				}).Warn("blocks outside build envelope discarded")
			}
			sets[i] = nil // release before the next merge runs
		})
	}
	mergePool.StopAndWait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	regionDir := filepath.Join(outDir, "region")
	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		return nil, err
	}

	summary := &Summary{Features: reports, Blocks: acc.Blocks()}
	keys := acc.Regions()
	log.WithFields(logrus.Fields{
		"blocks": summary.Blocks, "regions": len(keys),
	}).Info("encoding regions")

	var mu sync.Mutex
	encodePool := pond.NewPool(opts.Workers, pond.WithContext(ctx))
	for _, key := range keys {
		key := key
		encodePool.Submit(func() {
			report, err := encodeRegion(acc, key, regionDir, block, opts.BuildTime)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failures = append(summary.Failures, err)
				log.WithField("region", fmt.Sprintf("(%d, %d)", key.X, key.Z)).Error(err.Error())
				return
			}
			summary.Regions = append(summary.Regions, *report)
		})
	}
	encodePool.StopAndWait()
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	sort.Slice(summary.Regions, func(i, j int) bool {
		a, b := summary.Regions[i].Key, summary.Regions[j].Key
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})

	logSummary(summary)
	if len(summary.Failures) > 0 {
		return summary, fmt.Errorf("run finished with failures: %w", errors.Join(summary.Failures...))
	}
	return summary, nil
}

func resolveOrigin(sets []voxel.Set, opts Options) world.Origin {
	if opts.Origin != nil {
		return world.Origin{X: opts.Origin.X, Y: opts.Origin.Y}
	}
	var bounds []voxel.Box
	for _, s := range sets {
		if b, ok := s.Bounds(); ok {
			bounds = append(bounds, b)
		}
	}
	return world.ComputeOrigin(bounds)
}

func encodeRegion(acc *world.Accumulator, key world.RegionKey, dir string, block anvil.Block, buildTime uint32) (*RegionReport, error) {
	view := acc.Region(key)
	if view == nil {
		return nil, fmt.Errorf("region (%d, %d): empty view", key.X, key.Z)
	}
	reg := anvil.NewRegion(key.X, key.Z)
	chunks := 0
	var setErr error
	view.EachChunk(func(_ world.ChunkKey, blocks []world.BlockPos) {
		chunks++
		for _, p := range blocks {
			if err := reg.SetBlock(p.X, p.Y, p.Z, block); err != nil && setErr == nil {
				setErr = err
			}
		}
	})
	if setErr != nil {
		return nil, fmt.Errorf("region (%d, %d): %w", key.X, key.Z, setErr)
	}
	path, err := reg.WriteFile(dir, buildTime)
	if err != nil {
		return nil, fmt.Errorf("region (%d, %d): %w", key.X, key.Z, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("region (%d, %d): %w", key.X, key.Z, err)
	}
	return &RegionReport{
		Key:    key,
		Path:   path,
		Chunks: chunks,
		Blocks: view.Len(),
		Digest: xxhash.Sum64(data),
	}, nil
}

func logSummary(s *Summary) {
	skippedFeatures, skippedTriangles, clipped := 0, 0, 0
	for _, f := range s.Features {
		if f.Skipped {
			skippedFeatures++
		}
		skippedTriangles += f.SkippedTriangles
		clipped += f.Clipped
	}
	log.WithFields(logrus.Fields{
		"features":          len(s.Features),
		"skipped_features":  skippedFeatures,
		"skipped_triangles": skippedTriangles,
		"clipped_blocks":    clipped,
		"blocks":            s.Blocks,
		"regions":           len(s.Regions),
		"failures":          len(s.Failures),
	}).Info("conversion finished")
	for _, r := range s.Regions {
		log.WithFields(logrus.Fields{
			"file":   r.Path,
			"chunks": r.Chunks,
			"blocks": r.Blocks,
			"digest": fmt.Sprintf("%016x", r.Digest),
		}).Info("region written")
	}
}

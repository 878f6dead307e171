package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/meshvox/mesh2mca/anvil"
)

// RunInspect decodes a region file and prints its layout: one line per
// occupied chunk with its sector table entry and block count, then totals.
func RunInspect(path string, w io.Writer) error {
	region, err := anvil.ReadRegionFile(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "region (%d, %d): %d bytes, %d sectors, %d chunks\n",
		region.X, region.Z, info.Size(), info.Size()/anvil.SectorSize, len(region.Chunks))

	totalBlocks := 0
	for _, c := range region.Chunks {
		blocks := 0
		for si := range c.Sections {
			s := &c.Sections[si]
			for _, cell := range s.Cells {
				if cell != 0 {
					blocks++
				}
			}
		}
		totalBlocks += blocks
		fmt.Fprintf(w, "  chunk (%d, %d): sectors [%d, %d), %d sections, %d blocks\n",
			c.X, c.Z, c.SectorOffset, c.SectorOffset+c.SectorCount, len(c.Sections), blocks)
	}
	fmt.Fprintf(w, "total blocks: %d\n", totalBlocks)
	return nil
}

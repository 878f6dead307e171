package main

import (
	"context"
	"fmt"
	"os"

	"github.com/meshvox/mesh2mca/utils"
)

func usage() {
	fmt.Println("Usage: mesh2mca <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  convert <output_dir> input1.glb [input2.glb ...]            (voxelize glTF meshes into Anvil region files)")
	fmt.Println("  convert --config options.yaml <output_dir> input1.glb ...   (same, with an options file)")
	fmt.Println("  inspect region.mca                                          (decode a region file and print its layout)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "convert":
		args := os.Args[2:]
		opts := utils.DefaultOptions()
		if len(args) >= 2 && args[0] == "--config" {
			var err error
			opts, err = utils.LoadOptions(args[1])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			args = args[2:]
		}
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		output := args[0]
		inputs := args[1:]
		if _, err := utils.RunConvert(context.Background(), inputs, output, opts); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "inspect":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunInspect(os.Args[2], os.Stdout); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}

	fmt.Println("Operation completed!")
}

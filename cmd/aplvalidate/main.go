package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"stormblood-bard-sim/internal/apl"
	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/jobs/bard"
	"stormblood-bard-sim/internal/stats"
)

func main() {
	var rotationPath string
	var level int
	flag.StringVar(&rotationPath, "rotation", "configs/rotations/bard.yaml", "Path to rotation YAML")
	flag.IntVar(&level, "level", 70, "Bard level the rotation is checked against")
	flag.Parse()

	rotationPath = filepath.Clean(rotationPath)
	baseDir := filepath.Dir(rotationPath)
	rel := filepath.Base(rotationPath)

	kit := bard.New(character.New(1, "Bard", stats.Bard, stats.Highlander, level, nil))
	rot, err := apl.Load(baseDir, rel, kit.Loadout)
	if err != nil {
		log.Fatalf("rotation invalid: %v", err)
	}

	fmt.Printf("Rotation '%s' validated successfully (%d entries, source: %s)\n", rot.Name, len(rot.Actions), rotationPath)
}

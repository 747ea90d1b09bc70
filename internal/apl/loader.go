package apl

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRotation loads a rotation file relative to baseDir, resolving imports
// depth-first. Imported entries come before the importing file's own.
func LoadRotation(baseDir, relPath string) (*File, error) {
	seen := map[string]bool{}
	return loadRecursive(baseDir, relPath, seen)
}

func loadRecursive(baseDir, relPath string, seen map[string]bool) (*File, error) {
	normalized := filepath.Clean(relPath)
	if seen[normalized] {
		return nil, fmt.Errorf("rotation import cycle detected at %s", normalized)
	}
	seen[normalized] = true

	fullPath := filepath.Join(baseDir, normalized)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}

	// Resolve imports depth-first.
	var compiledRotation []ActionDefinition
	for _, imp := range file.Imports {
		child, err := loadRecursive(baseDir, imp, seen)
		if err != nil {
			return nil, err
		}
		compiledRotation = append(compiledRotation, child.Rotation...)
	}
	compiledRotation = append(compiledRotation, file.Rotation...)
	file.Rotation = compiledRotation

	seen[normalized] = false
	return file, nil
}

// Parse decodes a single rotation document without resolving imports.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// Load reads and compiles a rotation in one step.
func Load(baseDir, relPath string, catalog Catalog) (*CompiledRotation, error) {
	file, err := LoadRotation(baseDir, relPath)
	if err != nil {
		return nil, err
	}
	rot, err := Compile(file, catalog)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", relPath, err)
	}
	return rot, nil
}

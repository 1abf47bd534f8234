package querydef

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Load reads definitions from a YAML file, a CUE file, or a directory. A
// directory contributes every *.yaml/*.yml file beneath it (in lexical
// order) followed by the CUE package at its root, if any. Definition names
// must be unique across everything loaded.
func Load(target string) ([]*Definition, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	var defs []*Definition
	if !info.IsDir() {
		defs, err = loadFile(target)
	} else {
		defs, err = loadDir(target)
	}
	if err != nil {
		return nil, err
	}
	if err := checkUnique(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func loadFile(filename string) ([]*Definition, error) {
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		return LoadYAML(filename)
	case ".cue":
		src, err := os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		return ParseCUE(src, filename)
	default:
		return nil, fmt.Errorf("%s: unsupported definition file (want .yaml, .yml or .cue)", filename)
	}
}

func loadDir(dir string) ([]*Definition, error) {
	yamlFiles, cueFiles, err := FindDefinitionFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(yamlFiles) == 0 && len(cueFiles) == 0 {
		return nil, fmt.Errorf("no definition files found in %s", dir)
	}

	var defs []*Definition
	for _, f := range yamlFiles {
		parsed, err := LoadYAML(f)
		if err != nil {
			return nil, err
		}
		defs = append(defs, parsed...)
	}
	if hasRootCUE(dir, cueFiles) {
		parsed, err := LoadCUEDir(dir)
		if err != nil {
			return nil, err
		}
		defs = append(defs, parsed...)
	}
	return defs, nil
}

// FindDefinitionFiles walks dir and returns YAML and CUE files, each sorted.
func FindDefinitionFiles(dir string) (yamlFiles, cueFiles []string, err error) {
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, p)
		case ".cue":
			cueFiles = append(cueFiles, p)
		}
		return nil
	})
	sort.Strings(yamlFiles)
	sort.Strings(cueFiles)
	return yamlFiles, cueFiles, err
}

func hasRootCUE(dir string, cueFiles []string) bool {
	for _, f := range cueFiles {
		if filepath.Dir(f) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

func checkUnique(defs []*Definition) error {
	seen := make(map[string]string, len(defs))
	for _, d := range defs {
		if prev, ok := seen[d.Name]; ok {
			return &DefinitionError{
				Definition: d.Name,
				Message:    fmt.Sprintf("duplicate definition name (also defined in %s)", prev),
				File:       d.Source,
			}
		}
		seen[d.Name] = d.Source
	}
	return nil
}

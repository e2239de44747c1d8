package devcfg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode reads one model configuration from r. Unknown fields are rejected
// to catch typos in configuration files early.
func Decode(r io.Reader) (ModelInfo, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var info ModelInfo
	if err := dec.Decode(&info); err != nil {
		return ModelInfo{}, err
	}
	if info.Model == "" {
		return ModelInfo{}, fmt.Errorf("model configuration is missing the model field")
	}
	return info, nil
}

// Load reads one model configuration file.
func Load(path string) (ModelInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelInfo{}, err
	}
	info, err := Decode(bytes.NewReader(data))
	if err != nil {
		return ModelInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// LoadDir reads every .yaml file in dir and returns the configurations
// keyed by model identifier.
func LoadDir(dir string) (map[string]ModelInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	// Deterministic load order so duplicate detection is stable.
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	models := make(map[string]ModelInfo, len(names))
	for _, name := range names {
		info, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if _, exists := models[info.Model]; exists {
			return nil, fmt.Errorf("%s: duplicate configuration for model %q", name, info.Model)
		}
		models[info.Model] = info
	}
	return models, nil
}

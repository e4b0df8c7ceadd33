package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const ManifestName = "blocks.yaml"

type Limits struct {
	MaxRecursion int   `yaml:"max_recursion"`
	MaxMemory    int64 `yaml:"max_memory"`
}

// Manifest is a project's blocks.yaml.
type Manifest struct {
	Name      string   `yaml:"name"`
	Entry     string   `yaml:"entry"`
	Libraries []string `yaml:"libraries"`
	Limits    Limits   `yaml:"limits"`

	// Dir is the directory holding the manifest; Entry is relative to it.
	Dir string `yaml:"-"`
}

// EntryPath is the absolute path of the entry document.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Entry) {
		return m.Entry
	}
	return filepath.Join(m.Dir, m.Entry)
}

func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", abs)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}
	m.Dir = filepath.Dir(abs)
	m.Entry = strings.TrimSpace(m.Entry)
	if m.Entry == "" {
		return nil, fmt.Errorf("manifest: %s: entry must be provided", abs)
	}
	if m.Limits.MaxRecursion < 0 || m.Limits.MaxMemory < 0 {
		return nil, fmt.Errorf("manifest: %s: limits must not be negative", abs)
	}
	if m.Name == "" {
		m.Name = filepath.Base(m.Dir)
	}
	return m, nil
}

// FindManifest loads dir/blocks.yaml.
func FindManifest(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, ManifestName))
}

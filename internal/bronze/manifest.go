package bronze

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the declarative form of a Registry, as written in YAML.
type Manifest struct {
	BasePath string  `yaml:"basePath"`
	Mappings []Entry `yaml:"mappings"`
}

// Build validates the manifest and returns the Registry it describes.
func (m *Manifest) Build() (*Registry, error) {
	return New(m.BasePath, m.Mappings)
}

// WithBasePath returns a copy of the manifest rooted at basePath.
// An empty basePath returns an unchanged copy.
func (m *Manifest) WithBasePath(basePath string) *Manifest {
	out := &Manifest{
		BasePath: m.BasePath,
		Mappings: make([]Entry, len(m.Mappings)),
	}
	copy(out.Mappings, m.Mappings)
	if basePath != "" {
		out.BasePath = basePath
	}
	return out
}

// ParseManifest decodes a YAML manifest. Unknown keys are rejected.
// The result is not validated; call Build for that.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse manifest: empty document")
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ReadManifest reads and decodes the YAML manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	//nolint:gosec // path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest not found: %s", path)
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

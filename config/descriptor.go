package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cochaviz/bsdpack/internal/pkgng"
	"github.com/cochaviz/bsdpack/internal/project"
)

// Descriptor is the on-disk project file: the project itself plus the
// optional pkgng block.
//
//	name: hamlet
//	build_version: 1.2.3
//	install_dir: /opt/hamlet
//	pkgng:
//	  licenses: [BSD-2-Clause]
//	  origin: sysutils/hamlet
type Descriptor struct {
	project.Project `yaml:",inline"`

	Pkgng pkgng.Options `yaml:"pkgng,omitempty"`
}

// LoadDescriptor reads and validates a project descriptor from path.
func LoadDescriptor(path string) (Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("open project descriptor: %w", err)
	}
	defer f.Close()

	descriptor, err := DecodeDescriptor(f)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Descriptor{}, err
	}
	descriptor.Source = abs
	return descriptor, nil
}

// DecodeDescriptor decodes a descriptor document. Unknown keys are rejected.
func DecodeDescriptor(r io.Reader) (Descriptor, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var descriptor Descriptor
	if err := decoder.Decode(&descriptor); err != nil {
		if errors.Is(err, io.EOF) {
			return Descriptor{}, errors.New("project descriptor is empty")
		}
		return Descriptor{}, err
	}
	if err := descriptor.Project.Validate(); err != nil {
		return Descriptor{}, err
	}
	return descriptor, nil
}

// Package project loads the descriptor of the software being packaged.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Project is the read-only description of one build handed to the packager.
type Project struct {
	Name               string   `yaml:"name"`
	PackageName        string   `yaml:"package_name,omitempty"`
	BuildVersion       string   `yaml:"build_version"`
	BuildIteration     string   `yaml:"build_iteration,omitempty"`
	Maintainer         string   `yaml:"maintainer"`
	Homepage           string   `yaml:"homepage"`
	Description        string   `yaml:"description,omitempty"`
	InstallDir         string   `yaml:"install_dir"`
	ExtraPackageFiles  []string `yaml:"extra_package_files,omitempty"`
	PackageScriptsPath string   `yaml:"package_scripts_path,omitempty"`
	Exclusions         []string `yaml:"exclusions,omitempty"`

	// Path of the file the project was loaded from, if any. Relative paths in
	// the descriptor are resolved against its directory.
	Source string `yaml:"-"`
}

// DefaultBuildIteration is used when the descriptor leaves build_iteration unset.
const DefaultBuildIteration = "1"

// ResolvedPackageName returns package_name, falling back to name.
func (p Project) ResolvedPackageName() string {
	if p.PackageName != "" {
		return p.PackageName
	}
	return p.Name
}

// ResolvedBuildIteration returns build_iteration, falling back to DefaultBuildIteration.
func (p Project) ResolvedBuildIteration() string {
	if p.BuildIteration != "" {
		return p.BuildIteration
	}
	return DefaultBuildIteration
}

// ResolvedDescription returns the description, falling back to a generic sentence.
func (p Project) ResolvedDescription() string {
	if p.Description != "" {
		return p.Description
	}
	return fmt.Sprintf("The full stack of %s", p.Name)
}

// ScriptsDir returns the lifecycle script directory. Unless set explicitly it
// is package-scripts/<name> next to the descriptor.
func (p Project) ScriptsDir() string {
	if p.PackageScriptsPath != "" {
		return p.resolve(p.PackageScriptsPath)
	}
	return p.resolve(filepath.Join("package-scripts", p.Name))
}

// Validate checks the fields every build needs.
func (p Project) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(p.BuildVersion) == "" {
		problems = append(problems, "build_version is required")
	}
	if strings.TrimSpace(p.InstallDir) == "" {
		problems = append(problems, "install_dir is required")
	} else if !filepath.IsAbs(p.InstallDir) {
		problems = append(problems, fmt.Sprintf("install_dir %q must be absolute", p.InstallDir))
	}
	for _, extra := range p.ExtraPackageFiles {
		if !filepath.IsAbs(extra) {
			problems = append(problems, fmt.Sprintf("extra package file %q must be absolute", extra))
		}
	}
	if len(problems) > 0 {
		return errors.New("invalid project: " + strings.Join(problems, "; "))
	}
	return nil
}

func (p Project) resolve(path string) string {
	if filepath.IsAbs(path) || p.Source == "" {
		return path
	}
	return filepath.Join(filepath.Dir(p.Source), path)
}

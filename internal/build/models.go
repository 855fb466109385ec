package build

import (
	"github.com/cochaviz/bsdpack/arch"
	"github.com/cochaviz/bsdpack/internal/artifacts"
	"github.com/cochaviz/bsdpack/internal/pkgng"
	"github.com/cochaviz/bsdpack/internal/project"
)

// BuildRequest describes one package build.
type BuildRequest struct {
	Project   project.Project
	Options   pkgng.Options
	Machine   arch.Machine
	OSRelease string

	// ManifestOnly stops after the manifests are written; the package tool is
	// not run and the staging directory is kept.
	ManifestOnly bool
	// KeepStaging skips removal of the build environment.
	KeepStaging bool
}

// BuildContext is shared across the stages of one build.
type BuildContext struct {
	ID      string
	Project project.Project
}

// CreateRequest is the package tool's command line contract: root of the
// staged tree, output directory and the directory holding +MANIFEST.
type CreateRequest struct {
	RootDir     string
	OutputDir   string
	ManifestDir string
}

// BuildOutput captures the result of a build.
type BuildOutput struct {
	ID         string
	Identity   pkgng.Identity
	Manifest   *pkgng.Manifest
	StagingDir string
	Package    *artifacts.Artifact
}

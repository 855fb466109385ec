package build

import "context"

// BuildEnvironmentPreparer provisions the staging directory for a build.
type BuildEnvironmentPreparer interface {
	Prepare(ctx context.Context, buildContext BuildContext) (BuildEnvironment, error)
}

// BuildEnvironment is the scratch space of a single build.
type BuildEnvironment interface {
	// StagingDir mirrors the installed filesystem and receives the manifests.
	StagingDir() string
	// OutputDir receives the archive written by the package tool.
	OutputDir() string
	Cleanup() error
}

// PackageTool turns a staging directory into a package archive.
type PackageTool interface {
	Create(ctx context.Context, request CreateRequest) error
}

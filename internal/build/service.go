package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cochaviz/bsdpack/internal/artifacts"
	"github.com/cochaviz/bsdpack/internal/pkgng"
)

// BuildService assembles a pkgng package: it stages the project, writes both
// manifests, runs the package tool and publishes the result.
type BuildService struct {
	Logger              *slog.Logger
	EnvironmentPreparer BuildEnvironmentPreparer
	PackageTool         PackageTool
	ArtifactStore       artifacts.ArtifactStore

	// ScriptMap defaults to pkgng.DefaultScriptMap.
	ScriptMap []pkgng.ScriptMapping
	// VerifyPackage defaults to pkgng.VerifyArchive.
	VerifyPackage func(path string) error
}

func (s *BuildService) Run(ctx context.Context, request *BuildRequest) (*BuildOutput, error) {
	if s.EnvironmentPreparer == nil {
		return nil, errors.New("environment preparer is not configured")
	}
	if !request.ManifestOnly {
		if s.PackageTool == nil {
			return nil, errors.New("package tool is not configured")
		}
		if s.ArtifactStore == nil {
			return nil, errors.New("artifact store is not configured")
		}
	}
	if err := request.Project.Validate(); err != nil {
		return nil, err
	}
	if err := request.Options.Validate(); err != nil {
		return nil, err
	}

	buildID := uuid.New().String()
	logger := s.logger().With("build", buildID, "project", request.Project.Name)

	identity := pkgng.Identity{
		Name:           request.Project.ResolvedPackageName(),
		BuildVersion:   request.Project.BuildVersion,
		BuildIteration: request.Project.ResolvedBuildIteration(),
		Machine:        request.Machine,
		OSRelease:      request.OSRelease,
		Logger:         logger,
	}
	if request.Options.BaseName != "" {
		identity.Name = request.Options.BaseName
	}
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	buildContext := BuildContext{ID: buildID, Project: request.Project}

	env, err := s.EnvironmentPreparer.Prepare(ctx, buildContext)
	if err != nil {
		return nil, fmt.Errorf("prepare staging directory: %w", err)
	}
	if !request.KeepStaging && !request.ManifestOnly {
		defer func() {
			if err := env.Cleanup(); err != nil {
				logger.Warn("failed to clean up build environment", "error", err)
			}
		}()
	}
	stagingDir := env.StagingDir()
	logger.Info("staging directory prepared", "staging_dir", stagingDir)

	compactBuilder, err := pkgng.NewCompactManifestBuilder(request.Project, request.Options, identity)
	if err != nil {
		return nil, err
	}
	compact := compactBuilder.Build()

	contents := &pkgng.FullManifestBuilder{StagingDir: stagingDir, Logger: logger}
	manifest, err := contents.Build(compact)
	if err != nil {
		return nil, err
	}

	scriptMap := s.ScriptMap
	if scriptMap == nil {
		scriptMap = pkgng.DefaultScriptMap
	}
	if err := pkgng.InjectScripts(manifest, request.Project.ScriptsDir(), scriptMap); err != nil {
		return nil, err
	}
	logger.Info("manifests generated",
		"files", len(manifest.Files),
		"directories", len(manifest.Directories),
		"scripts", len(manifest.Scripts),
		"flatsize", manifest.FlatSize,
	)

	if err := pkgng.WriteManifest(stagingDir, pkgng.CompactManifestFile, compact); err != nil {
		return nil, err
	}
	if err := pkgng.WriteManifest(stagingDir, pkgng.ManifestFile, manifest); err != nil {
		return nil, err
	}

	output := &BuildOutput{
		ID:         buildID,
		Identity:   identity,
		Manifest:   manifest,
		StagingDir: stagingDir,
	}
	if request.ManifestOnly {
		return output, nil
	}

	logger.Info("creating package")
	if err := s.PackageTool.Create(ctx, CreateRequest{
		RootDir:     stagingDir,
		OutputDir:   env.OutputDir(),
		ManifestDir: stagingDir,
	}); err != nil {
		return nil, err
	}

	packagePath, err := locatePackage(env.OutputDir(), identity)
	if err != nil {
		return nil, err
	}

	verify := s.VerifyPackage
	if verify == nil {
		verify = pkgng.VerifyArchive
	}
	if err := verify(packagePath); err != nil {
		return nil, &BuildError{Message: fmt.Sprintf("verify package: %v", err)}
	}

	packageName := identity.PackageFileName()
	artifact, err := s.ArtifactStore.StoreArtifact(packagePath, packageName, artifacts.PackageArtifact, map[string]any{
		"name":    manifest.Name,
		"version": manifest.Version,
		"arch":    manifest.Arch,
		"origin":  manifest.Origin,
	})
	if err != nil {
		return nil, fmt.Errorf("publish package: %w", err)
	}
	output.Package = &artifact

	logger.Info("package published", "package", packageName, "uri", artifact.URI)
	return output, nil
}

// locatePackage finds the archive `pkg create` wrote for identity. Older pkg
// releases name it after the manifest's name and version; if that file is
// absent a single archive matching the package name is accepted.
func locatePackage(outputDir string, identity pkgng.Identity) (string, error) {
	expected := filepath.Join(outputDir, identity.ToolOutputName())
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	pattern := filepath.Join(outputDir, fmt.Sprintf("%s-*.%s", identity.BaseName(), pkgng.PackageExtension))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) != 1 {
		return "", &BuildError{Message: fmt.Sprintf("package tool did not produce %s (found %d candidates)", identity.ToolOutputName(), len(matches))}
	}
	return matches[0], nil
}

func (s *BuildService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

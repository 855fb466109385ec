package config

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/cochaviz/bsdpack/arch"
	"github.com/cochaviz/bsdpack/internal/artifacts"
	"github.com/cochaviz/bsdpack/internal/build"
	"github.com/cochaviz/bsdpack/internal/build/adapters/filesync"
	"github.com/cochaviz/bsdpack/internal/build/adapters/pkgtool"
	"github.com/cochaviz/bsdpack/internal/logging"
	"github.com/cochaviz/bsdpack/internal/pkgng"
	"github.com/cochaviz/bsdpack/internal/setup"
)

var DefaultPackageDir = setup.DefaultPackageDir
var DefaultPkgTool = setup.DefaultPkgTool

// Settings are the host-side knobs of a build. Empty values fall back to the
// defaults above or to what the running kernel reports.
type Settings struct {
	PackageDir  string `mapstructure:"package_dir"`
	PkgTool     string `mapstructure:"pkg_tool"`
	WorkDir     string `mapstructure:"work_dir"`
	Machine     string `mapstructure:"machine"`
	OSRelease   string `mapstructure:"os_version"`
	KeepStaging bool   `mapstructure:"keep_staging"`
}

// BuildPackage executes the end-to-end flow and publishes the package into
// settings.PackageDir.
func BuildPackage(ctx context.Context, descriptorPath string, settings Settings, logger *slog.Logger) (*build.BuildOutput, error) {
	logger = logging.Ensure(logger).With("component", "config.simple")

	descriptor, err := LoadDescriptor(descriptorPath)
	if err != nil {
		return nil, err
	}
	request, err := newRequest(descriptor, settings, logger)
	if err != nil {
		return nil, err
	}
	request.KeepStaging = settings.KeepStaging

	if settings.PackageDir == "" {
		settings.PackageDir = DefaultPackageDir
	}
	if settings.PkgTool == "" {
		settings.PkgTool = DefaultPkgTool
	}
	if err := setup.VerifyPkgTool(settings.PkgTool); err != nil {
		return nil, err
	}
	if err := setup.VerifyPackageDir(settings.PackageDir); err != nil {
		return nil, err
	}

	service := newService(settings, logger)
	service.PackageTool = &pkgtool.PkgCreate{
		Binary: settings.PkgTool,
		Logger: logger.With("tool", "pkg"),
	}
	service.ArtifactStore = &artifacts.LocalArtifactStore{BaseDir: settings.PackageDir}

	return service.Run(ctx, request)
}

// GenerateManifests stages the project and writes +COMPACT_MANIFEST and
// +MANIFEST without creating a package. The staging directory is kept.
func GenerateManifests(ctx context.Context, descriptorPath string, settings Settings, logger *slog.Logger) (*build.BuildOutput, error) {
	logger = logging.Ensure(logger).With("component", "config.simple")

	descriptor, err := LoadDescriptor(descriptorPath)
	if err != nil {
		return nil, err
	}
	request, err := newRequest(descriptor, settings, logger)
	if err != nil {
		return nil, err
	}
	request.ManifestOnly = true

	return newService(settings, logger).Run(ctx, request)
}

// PackageName returns the file name the package for descriptorPath would be
// published under.
func PackageName(descriptorPath string, settings Settings, logger *slog.Logger) (string, error) {
	logger = logging.Ensure(logger).With("component", "config.simple")

	descriptor, err := LoadDescriptor(descriptorPath)
	if err != nil {
		return "", err
	}
	request, err := newRequest(descriptor, settings, logger)
	if err != nil {
		return "", err
	}

	identity := pkgng.Identity{
		Name:           descriptor.ResolvedPackageName(),
		BuildVersion:   descriptor.BuildVersion,
		BuildIteration: descriptor.ResolvedBuildIteration(),
		Machine:        request.Machine,
		OSRelease:      request.OSRelease,
		Logger:         logger,
	}
	if descriptor.Pkgng.BaseName != "" {
		identity.Name = descriptor.Pkgng.BaseName
	}
	if err := identity.Validate(); err != nil {
		return "", err
	}
	return identity.PackageFileName(), nil
}

func newService(settings Settings, logger *slog.Logger) *build.BuildService {
	return &build.BuildService{
		Logger: logger.With("service", "build"),
		EnvironmentPreparer: &filesync.StagingPreparer{
			BaseDir: settings.WorkDir,
			Logger:  logger.With("preparer", "filesync"),
		},
	}
}

func newRequest(descriptor Descriptor, settings Settings, logger *slog.Logger) (*build.BuildRequest, error) {
	machine, release, err := resolveHost(settings, logger)
	if err != nil {
		return nil, err
	}
	return &build.BuildRequest{
		Project:   descriptor.Project,
		Options:   descriptor.Pkgng,
		Machine:   machine,
		OSRelease: release,
	}, nil
}

// resolveHost fills in the machine and OS release from uname(2) unless the
// settings override them.
func resolveHost(settings Settings, logger *slog.Logger) (arch.Machine, string, error) {
	var (
		machine arch.Machine
		release = settings.OSRelease
		err     error
	)
	if settings.Machine != "" {
		if machine, err = arch.Parse(settings.Machine); err != nil {
			return "", "", err
		}
	}
	if machine != "" && release != "" {
		return machine, release, nil
	}

	host, err := arch.DetectHost()
	if err != nil {
		return "", "", fmt.Errorf("detect host: %w", err)
	}
	if machine == "" {
		machine = host.Machine
	}
	if release == "" {
		release = host.Release
		if runtime.GOOS != "freebsd" {
			logger.Warn("not running on FreeBSD; the package OS version is taken from the local kernel release",
				"release", release,
				"hint", "set --os-version to the target FreeBSD release",
			)
		}
	}
	return machine, release, nil
}

package pkgng

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cochaviz/bsdpack/arch"
)

// PackageExtension is the archive extension produced by `pkg create`.
const PackageExtension = "txz"

// Identity holds the raw inputs a package name is derived from. Every accessor
// recomputes its value, so sanitization warnings are logged on each call that
// had to convert something.
type Identity struct {
	Name           string
	BuildVersion   string
	BuildIteration string
	Machine        arch.Machine
	OSRelease      string

	Logger *slog.Logger
}

// Validate reports whether the identity can produce a package name.
func (id Identity) Validate() error {
	if id.Name == "" {
		return &ValidationError{Field: "base_package_name", Reason: "not be empty"}
	}
	if id.BuildVersion == "" {
		return errors.New("build version is required")
	}
	if id.Machine.PkgngLabel() == "" {
		return fmt.Errorf("machine %q has no pkgng architecture", id.Machine)
	}
	if _, err := arch.MajorVersion(id.OSRelease); err != nil {
		return fmt.Errorf("os release: %w", err)
	}
	return nil
}

// BaseName returns the package name restricted to the pkgng name alphabet.
func (id Identity) BaseName() string {
	converted, changed := SanitizeName(id.Name)
	if changed {
		id.logger().Warn("the name component of FreeBSD package names can only include lower case letters (a-z), numbers (0-9), dots (.), plus signs (+) and dashes (-); converting",
			"original", id.Name,
			"converted", converted,
		)
	}
	return converted
}

// Iteration returns the build iteration unchanged.
func (id Identity) Iteration() string {
	return id.BuildIteration
}

// Version returns "<build version>_<iteration>" restricted to the pkgng
// version alphabet.
func (id Identity) Version() string {
	raw := id.BuildVersion
	if iteration := id.Iteration(); iteration != "" {
		raw += "_" + iteration
	}

	converted, changed := SanitizeVersion(raw)
	if changed {
		id.logger().Warn("the version component of FreeBSD package names can only include letters (a-z, A-Z), numbers (0-9), dots (.), dashes (-), underscores (_) and commas (,); converting",
			"original", raw,
			"converted", converted,
		)
	}
	return converted
}

// Architecture returns the manifest arch label, e.g. "x86:64".
func (id Identity) Architecture() string {
	return id.Machine.PkgngLabel()
}

// OSVersion returns the OS label embedded in package filenames, e.g. "FreeBSD13".
func (id Identity) OSVersion() string {
	major, err := arch.MajorVersion(id.OSRelease)
	if err != nil {
		return "FreeBSD"
	}
	return "FreeBSD" + strconv.Itoa(major)
}

// PackageFileName is the canonical name the finished package is published under:
// <name>-<version>-<os>-<machine>.txz.
func (id Identity) PackageFileName() string {
	return fmt.Sprintf("%s-%s-%s-%s.%s", id.BaseName(), id.Version(), id.OSVersion(), id.Machine, PackageExtension)
}

// ToolOutputName is the file `pkg create` writes into its output directory.
func (id Identity) ToolOutputName() string {
	return fmt.Sprintf("%s-%s.%s", id.BaseName(), id.Version(), PackageExtension)
}

func (id Identity) logger() *slog.Logger {
	if id.Logger != nil {
		return id.Logger
	}
	return slog.Default()
}

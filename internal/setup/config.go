package setup

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

var StorageDir = "/var/cache/bsdpack/"

// DefaultPackageDir receives published packages.
var DefaultPackageDir = StorageDir + "pkg"

// DefaultPkgTool is the pkg(8) binary used to create archives.
var DefaultPkgTool = "/usr/sbin/pkg"

// VerifyPkgTool checks that the package tool exists and is executable.
func VerifyPkgTool(path string) error {
	if path == "" {
		path = DefaultPkgTool
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("package tool %s not found; install pkg(8) or pass --pkg-tool", path)
		}
		return fmt.Errorf("package tool %s: %w", path, err)
	}
	getLogger().Debug("package tool found", "path", resolved)
	return nil
}

// VerifyPackageDir ensures the package directory exists and is writable.
func VerifyPackageDir(dir string) error {
	if dir == "" {
		dir = DefaultPackageDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create package directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".bsdpack-probe-*")
	if err != nil {
		return fmt.Errorf("package directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		getLogger().Warn("failed to remove probe file", "path", name, "error", err)
	}
	return nil
}

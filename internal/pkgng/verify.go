package pkgng

import (
	"archive/tar"
	"fmt"
	"path"
	"strings"

	"github.com/mholt/archiver"
)

// VerifyArchive checks that a package produced by `pkg create` carries both
// manifests at its root.
func VerifyArchive(archivePath string) error {
	found := map[string]bool{
		CompactManifestFile: false,
		ManifestFile:        false,
	}

	err := archiver.Walk(archivePath, func(f archiver.File) error {
		name := f.Name()
		if header, ok := f.Header.(*tar.Header); ok {
			name = header.Name
		}
		name = path.Clean(strings.TrimPrefix(name, "/"))
		if _, ok := found[name]; ok {
			found[name] = true
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("read package %s: %w", archivePath, err)
	}

	var missing []string
	for _, name := range []string{CompactManifestFile, ManifestFile} {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("package %s is missing %s", archivePath, strings.Join(missing, ", "))
	}
	return nil
}

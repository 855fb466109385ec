package pkgng

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// FullManifestBuilder walks a staging directory and extends a compact
// manifest with the files and directories found there.
type FullManifestBuilder struct {
	StagingDir string
	Logger     *slog.Logger
}

func (b *FullManifestBuilder) logger() *slog.Logger {
	if b != nil && b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Build visits every entry below StagingDir exactly once. Regular files are
// checksummed, directories recorded, symlinks stored as placeholders and any
// other entry type skipped. Manifest files already present at the staging
// root are not part of the payload and are ignored.
func (b *FullManifestBuilder) Build(compact CompactManifest) (*Manifest, error) {
	if b.StagingDir == "" {
		return nil, fmt.Errorf("staging directory is required")
	}
	root, err := filepath.Abs(b.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging directory: %w", err)
	}

	manifest := &Manifest{
		CompactManifest: compact,
		Files:           map[string]FileEntry{},
		Directories:     map[string]DirectoryEntry{},
		Scripts:         map[string]string{},
	}

	logger := b.logger().With("staging_dir", root)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}

		key, err := manifestKey(root, path)
		if err != nil {
			return err
		}
		if key == "/"+CompactManifestFile || key == "/"+ManifestFile {
			return nil
		}

		meta, err := Inspect(path)
		if err != nil {
			return err
		}

		switch meta.Kind {
		case KindFile:
			sum, err := Digest(path)
			if err != nil {
				return err
			}
			manifest.FlatSize += meta.Size
			manifest.Files[key] = FileEntry{
				Sum:   sum,
				UName: PackageOwner,
				GName: PackageGroup,
				Perm:  meta.Perm,
			}
		case KindDirectory:
			manifest.FlatSize += meta.Size
			manifest.Directories[key] = DirectoryEntry{
				UName: PackageOwner,
				GName: PackageGroup,
				Perm:  meta.Perm,
			}
		case KindSymlink:
			manifest.Files[key] = FileEntry{Symlink: true}
		case KindOther:
			logger.Debug("skipping unsupported staged entry", "path", key)
		default:
			return fmt.Errorf("unhandled entry kind %q for %s", meta.Kind, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk staging directory: %w", err)
	}

	logger.Debug("collected package contents",
		"files", len(manifest.Files),
		"directories", len(manifest.Directories),
		"flatsize", manifest.FlatSize,
	)
	return manifest, nil
}

// manifestKey strips the staging directory from path and roots the remainder at "/".
func manifestKey(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(rel), nil
}

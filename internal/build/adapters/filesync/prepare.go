// Package filesync stages a project's install tree into a scratch directory.
package filesync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cochaviz/bsdpack/internal/build"
)

// Ensure StagingPreparer satisfies the build interfaces.
var _ build.BuildEnvironmentPreparer = (*StagingPreparer)(nil)
var _ build.BuildEnvironment = (*StagingEnvironment)(nil)

// StagingPreparer copies the install directory and extra package files into a
// fresh directory below BaseDir (os.TempDir() when empty).
type StagingPreparer struct {
	BaseDir string
	Logger  *slog.Logger
}

// StagingEnvironment is the work directory of one build.
type StagingEnvironment struct {
	WorkDir string
}

func (e *StagingEnvironment) StagingDir() string {
	return filepath.Join(e.WorkDir, "staging")
}

func (e *StagingEnvironment) OutputDir() string {
	return filepath.Join(e.WorkDir, "output")
}

// Cleanup removes the whole work directory.
func (e *StagingEnvironment) Cleanup() error {
	if e == nil || e.WorkDir == "" {
		return nil
	}
	return os.RemoveAll(e.WorkDir)
}

func (p *StagingPreparer) logger() *slog.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Prepare creates the work directory and syncs the project into it.
//
//	/opt/project         => <work>/staging/opt/project
//	/etc/project.conf    => <work>/staging/etc/project.conf
func (p *StagingPreparer) Prepare(ctx context.Context, buildContext build.BuildContext) (build.BuildEnvironment, error) {
	if p.BaseDir != "" {
		if err := os.MkdirAll(p.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("create base directory: %w", err)
		}
	}

	workDir, err := os.MkdirTemp(p.BaseDir, fmt.Sprintf("bsdpack-%s-*", buildContext.ID))
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	env := &StagingEnvironment{WorkDir: workDir}

	if err := p.populate(ctx, env, buildContext); err != nil {
		_ = env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (p *StagingPreparer) populate(ctx context.Context, env *StagingEnvironment, buildContext build.BuildContext) error {
	if err := os.MkdirAll(env.OutputDir(), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	project := buildContext.Project
	logger := p.logger().With("build", buildContext.ID)

	destination := filepath.Join(env.StagingDir(), project.InstallDir)
	logger.Debug("syncing install directory", "source", project.InstallDir, "destination", destination)
	if err := Sync(ctx, project.InstallDir, destination, project.Exclusions, logger); err != nil {
		return fmt.Errorf("sync install directory: %w", err)
	}

	for _, file := range project.ExtraPackageFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(env.StagingDir(), file)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", file, err)
		}
		info, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("extra package file: %w", err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("extra package file %s is not a regular file", file)
		}
		if err := copyFile(file, target, info.Mode().Perm()); err != nil {
			return fmt.Errorf("copy extra package file %s: %w", file, err)
		}
		logger.Debug("staged extra package file", "file", file)
	}
	return nil
}

// Sync mirrors source into destination. Symlinks are recreated rather than
// followed, and entries whose path relative to source matches one of the
// exclusion patterns are skipped together with their children.
func Sync(ctx context.Context, source, destination string, exclusions []string, logger *slog.Logger) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", source)
	}

	// Directory modes are applied once the tree is populated so read-only
	// directories can still receive their children.
	type dirMode struct {
		path string
		perm fs.FileMode
	}
	var dirModes []dirMode

	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		if rel != "." && excluded(rel, exclusions) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		targetPath := filepath.Join(destination, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		mode := info.Mode()

		switch {
		case mode&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
				return err
			}
			if err := os.Remove(targetPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return os.Symlink(link, targetPath)
		case d.IsDir():
			dirModes = append(dirModes, dirMode{path: targetPath, perm: mode.Perm()})
			return os.MkdirAll(targetPath, 0o755)
		case mode.IsRegular():
			if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
				return err
			}
			return copyFile(path, targetPath, mode.Perm())
		default:
			if logger != nil {
				logger.Warn("skipping unsupported file type", "path", path, "mode", mode.String())
			}
			return nil
		}
	})
	if err != nil {
		return err
	}

	for i := len(dirModes) - 1; i >= 0; i-- {
		if err := os.Chmod(dirModes[i].path, dirModes[i].perm); err != nil {
			return err
		}
	}
	return nil
}

// excluded reports whether rel matches any exclusion glob. Patterns without a
// slash also match the base name; "**" crosses directory boundaries.
func excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "/")
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}

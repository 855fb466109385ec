// Package pkgtool drives FreeBSD's pkg(8) to create package archives.
package pkgtool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/cochaviz/bsdpack/internal/build"
)

// DefaultBinary is where pkg(8) lives on FreeBSD.
const DefaultBinary = "/usr/sbin/pkg"

// Ensure PkgCreate satisfies the package tool interface.
var _ build.PackageTool = (*PkgCreate)(nil)

// PkgCreate runs `pkg create`.
type PkgCreate struct {
	Binary string
	Logger *slog.Logger

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (t *PkgCreate) logger() *slog.Logger {
	if t != nil && t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// Command returns the argv for request:
//
//	pkg create -r <root> -o <output> -m <manifest dir>
func (t *PkgCreate) Command(request build.CreateRequest) []string {
	binary := t.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	return []string{
		binary,
		"create",
		"-r", request.RootDir,
		"-o", request.OutputDir,
		"-m", request.ManifestDir,
	}
}

// Create runs the tool and fails on a non-zero exit status.
func (t *PkgCreate) Create(ctx context.Context, request build.CreateRequest) error {
	if request.RootDir == "" || request.OutputDir == "" || request.ManifestDir == "" {
		return &build.BuildError{Message: "root, output and manifest directories are required"}
	}

	args := t.Command(request)
	t.logger().Info("running pkg", "command", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = t.stdout()
	cmd.Stderr = io.MultiWriter(t.stderr(), &stderr)

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("pkg create failed: %v", err)
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			message += ": " + lastLine(detail)
		}
		return &build.BuildError{Message: message}
	}
	return nil
}

func (t *PkgCreate) stdout() io.Writer {
	if t.Stdout != nil {
		return t.Stdout
	}
	return os.Stdout
}

func (t *PkgCreate) stderr() io.Writer {
	if t.Stderr != nil {
		return t.Stderr
	}
	return os.Stderr
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

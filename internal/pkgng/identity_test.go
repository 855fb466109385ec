package pkgng

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/cochaviz/bsdpack/arch"
	"github.com/cochaviz/bsdpack/internal/logging"
)

func TestIdentityPackageFileName(t *testing.T) {
	t.Parallel()

	id := Identity{
		Name:           "project",
		BuildVersion:   "1.2.3",
		BuildIteration: "2",
		Machine:        arch.AMD64,
		OSRelease:      "10.3-RELEASE-p4",
		Logger:         logging.Discard(),
	}
	if err := id.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got, want := id.PackageFileName(), "project-1.2.3_2-FreeBSD10-amd64.txz"; got != want {
		t.Fatalf("PackageFileName() = %q, want %q", got, want)
	}
	if got, want := id.ToolOutputName(), "project-1.2.3_2.txz"; got != want {
		t.Fatalf("ToolOutputName() = %q, want %q", got, want)
	}
	if got := id.Architecture(); got != "x86:64" {
		t.Fatalf("Architecture() = %q, want x86:64", got)
	}
	if got := id.OSVersion(); got != "FreeBSD10" {
		t.Fatalf("OSVersion() = %q, want FreeBSD10", got)
	}
}

func TestIdentitySanitizesVersionWithIteration(t *testing.T) {
	t.Parallel()

	id := Identity{
		Name:           "project",
		BuildVersion:   "1.2$alpha.~##__2",
		BuildIteration: "2",
		Machine:        arch.ARM64,
		OSRelease:      "14.1-RELEASE",
		Logger:         logging.Discard(),
	}
	if got, want := id.Version(), "1.2_alpha._2_2"; got != want {
		t.Fatalf("Version() = %q, want %q", got, want)
	}
	if got, want := id.Architecture(), "aarch64:64"; got != want {
		t.Fatalf("Architecture() = %q, want %q", got, want)
	}
}

func TestIdentityWarnsOnConversion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	id := Identity{
		Name:         "My_Project",
		BuildVersion: "1.0",
		Machine:      arch.AMD64,
		OSRelease:    "13.2-RELEASE",
		Logger:       logging.NewCLI(&buf, slog.LevelWarn),
	}

	if got := id.BaseName(); got != "my-project" {
		t.Fatalf("BaseName() = %q, want my-project", got)
	}
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one warning, got %q", out)
	}
	if !strings.Contains(out, "original=My_Project") || !strings.Contains(out, "converted=my-project") {
		t.Fatalf("warning is missing conversion attributes: %q", out)
	}

	buf.Reset()
	if got := id.Version(); got != "1.0" {
		t.Fatalf("Version() = %q, want 1.0", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("valid version should not warn, got %q", buf.String())
	}
}

func TestIdentityValidate(t *testing.T) {
	t.Parallel()

	base := Identity{Name: "p", BuildVersion: "1", Machine: arch.AMD64, OSRelease: "13.2"}

	cases := map[string]func(*Identity){
		"empty name":      func(id *Identity) { id.Name = "" },
		"empty version":   func(id *Identity) { id.BuildVersion = "" },
		"unknown machine": func(id *Identity) { id.Machine = "sparc64" },
		"bad release":     func(id *Identity) { id.OSRelease = "RELEASE" },
	}
	for name, mutate := range cases {
		id := base
		mutate(&id)
		if err := id.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base identity: %v", err)
	}
}

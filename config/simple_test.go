package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/cochaviz/bsdpack/internal/logging"
	"github.com/cochaviz/bsdpack/internal/pkgng"
)

func writeDescriptor(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "bsdpack.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestDecodeDescriptor(t *testing.T) {
	t.Parallel()

	descriptor, err := DecodeDescriptor(strings.NewReader(`
name: hamlet
build_version: 1.2.3
maintainer: ops@example.com
homepage: https://example.com
install_dir: /opt/hamlet
exclusions: ["*.log"]
pkgng:
  licenses: [BSD-2-Clause, MIT]
  licenselogic: dual
  origin: sysutils/hamlet
`))
	if err != nil {
		t.Fatalf("DecodeDescriptor returned error: %v", err)
	}
	if descriptor.Name != "hamlet" || descriptor.InstallDir != "/opt/hamlet" {
		t.Fatalf("unexpected project: %+v", descriptor.Project)
	}
	if got := descriptor.Pkgng.LicenseLogic; got != pkgng.LicenseDual {
		t.Fatalf("licenselogic = %q, want dual", got)
	}
	if got := strings.Join(descriptor.Pkgng.Licenses, ","); got != "BSD-2-Clause,MIT" {
		t.Fatalf("licenses = %q", got)
	}
	if got := descriptor.Exclusions; len(got) != 1 || got[0] != "*.log" {
		t.Fatalf("exclusions = %v", got)
	}
}

func TestDecodeDescriptorRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown key":        "name: a\nbuild_version: '1'\ninstall_dir: /opt/a\nflavour: x\n",
		"relative install":   "name: a\nbuild_version: '1'\ninstall_dir: opt/a\n",
		"missing version":    "name: a\ninstall_dir: /opt/a\n",
		"origin shape":       "name: a\nbuild_version: '1'\ninstall_dir: /opt/a\npkgng:\n  origin: nocategory\n",
		"licenses not list":  "name: a\nbuild_version: '1'\ninstall_dir: /opt/a\npkgng:\n  licenses: MIT\n",
		"comment not string": "name: a\nbuild_version: '1'\ninstall_dir: /opt/a\npkgng:\n  comment: [a]\n",
		"empty document":     "",
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeDescriptor(strings.NewReader(body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDecodeDescriptorReportsFieldErrors(t *testing.T) {
	t.Parallel()

	_, err := DecodeDescriptor(strings.NewReader("name: a\nbuild_version: '1'\ninstall_dir: /opt/a\npkgng:\n  licenselogic: 3\n"))
	var validation *pkgng.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Field != "licenselogic" {
		t.Fatalf("field = %q, want licenselogic", validation.Field)
	}
}

func TestLoadDescriptorResolvesScriptsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDescriptor(t, dir, "name: hamlet\nbuild_version: 1.0.0\ninstall_dir: /opt/hamlet\n")

	descriptor, err := LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor returned error: %v", err)
	}
	if want := filepath.Join(dir, "package-scripts", "hamlet"); descriptor.ScriptsDir() != want {
		t.Fatalf("ScriptsDir = %q, want %q", descriptor.ScriptsDir(), want)
	}
}

func TestPackageNameUsesOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDescriptor(t, dir, "name: project\nbuild_version: 1.2.3\nbuild_iteration: '2'\ninstall_dir: /opt/project\n")

	name, err := PackageName(path, Settings{Machine: "amd64", OSRelease: "10.3-RELEASE"}, logging.Discard())
	if err != nil {
		t.Fatalf("PackageName returned error: %v", err)
	}
	if want := "project-1.2.3_2-FreeBSD10-amd64.txz"; name != want {
		t.Fatalf("PackageName = %q, want %q", name, want)
	}
}

func TestPackageNameRejectsUnknownMachine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeDescriptor(t, dir, "name: project\nbuild_version: 1.2.3\ninstall_dir: /opt/project\n")

	if _, err := PackageName(path, Settings{Machine: "sparc64", OSRelease: "13.2-RELEASE"}, logging.Discard()); err == nil {
		t.Fatalf("expected error for unsupported machine")
	}
}

func TestGenerateManifests(t *testing.T) {
	t.Parallel()

	installDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(installDir, "hamlet.conf"), []byte("verbose = true\n"), 0o640); err != nil {
		t.Fatalf("write install file: %v", err)
	}

	dir := t.TempDir()
	path := writeDescriptor(t, dir, "name: hamlet\nbuild_version: 0.9.1\nmaintainer: ops@example.com\nhomepage: https://example.com\ninstall_dir: "+installDir+"\n")

	output, err := GenerateManifests(context.Background(), path, Settings{
		WorkDir:   t.TempDir(),
		Machine:   "arm64",
		OSRelease: "14.1-RELEASE",
	}, logging.Discard())
	if err != nil {
		t.Fatalf("GenerateManifests returned error: %v", err)
	}
	if output.Package != nil {
		t.Fatalf("manifest-only run published a package")
	}

	manifest, err := pkgng.ReadManifest(filepath.Join(output.StagingDir, pkgng.ManifestFile))
	if err != nil {
		t.Fatalf("ReadManifest returned error: %v", err)
	}
	if manifest.Arch != "aarch64:64" {
		t.Fatalf("arch = %q, want aarch64:64", manifest.Arch)
	}
	key := filepath.Join(installDir, "hamlet.conf")
	entry, ok := manifest.Files[key]
	if !ok {
		t.Fatalf("manifest has no entry for %s: %v", key, manifest.Files)
	}
	if entry.Perm != "640" && entry.Perm != "0640" {
		t.Fatalf("perm = %q, want 640", entry.Perm)
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	settingsFile := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(settingsFile, []byte("package_dir: /from/file\nwork_dir: /file/work\nmachine: i386\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	t.Setenv("BSDPACK_WORK_DIR", "/env/work")
	t.Setenv("BSDPACK_MACHINE", "arm64")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("package-dir", DefaultPackageDir, "")
	flags.String("machine", "", "")
	flags.Bool("keep-staging", false, "")
	if err := flags.Parse([]string{"--machine", "riscv64", "--keep-staging"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	settings, err := LoadSettings(flags, settingsFile)
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	if settings.PackageDir != "/from/file" {
		t.Fatalf("PackageDir = %q, want value from file", settings.PackageDir)
	}
	if settings.WorkDir != "/env/work" {
		t.Fatalf("WorkDir = %q, want value from environment", settings.WorkDir)
	}
	if settings.Machine != "riscv64" {
		t.Fatalf("Machine = %q, want value from flag", settings.Machine)
	}
	if !settings.KeepStaging {
		t.Fatalf("KeepStaging = false, want true")
	}
	if settings.PkgTool != DefaultPkgTool {
		t.Fatalf("PkgTool = %q, want default", settings.PkgTool)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadSettings(nil, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing settings file")
	}
}

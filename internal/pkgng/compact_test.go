package pkgng

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/cochaviz/bsdpack/arch"
	"github.com/cochaviz/bsdpack/internal/logging"
	"github.com/cochaviz/bsdpack/internal/project"
)

func testProject() project.Project {
	return project.Project{
		Name:         "hamlet",
		BuildVersion: "1.2.3",
		Maintainer:   "ops@example.com",
		Homepage:     "https://example.com/hamlet",
		InstallDir:   "/opt/hamlet",
	}
}

func testIdentity(p project.Project) Identity {
	return Identity{
		Name:           p.ResolvedPackageName(),
		BuildVersion:   p.BuildVersion,
		BuildIteration: p.ResolvedBuildIteration(),
		Machine:        arch.AMD64,
		OSRelease:      "13.2-RELEASE",
		Logger:         logging.Discard(),
	}
}

func TestCompactManifestDefaults(t *testing.T) {
	t.Parallel()

	p := testProject()
	builder, err := NewCompactManifestBuilder(p, Options{}, testIdentity(p))
	if err != nil {
		t.Fatalf("NewCompactManifestBuilder() error = %v", err)
	}
	compact := builder.Build()

	want := CompactManifest{
		Prefix:       "/",
		Name:         "hamlet",
		Version:      "1.2.3_1",
		Arch:         "x86:64",
		Origin:       "misc/hamlet",
		Comment:      "The hamlet package",
		Maintainer:   "ops@example.com",
		WWW:          "https://example.com/hamlet",
		Desc:         "The full stack of hamlet",
		LicenseLogic: LicenseSingle,
		Licenses:     []string{"unknown"},
	}
	if compact.Name != want.Name || compact.Version != want.Version || compact.Arch != want.Arch ||
		compact.Origin != want.Origin || compact.Comment != want.Comment || compact.Desc != want.Desc ||
		compact.Prefix != want.Prefix || compact.Maintainer != want.Maintainer || compact.WWW != want.WWW ||
		compact.LicenseLogic != want.LicenseLogic || strings.Join(compact.Licenses, ",") != "unknown" {
		t.Fatalf("unexpected compact manifest:\n got %+v\nwant %+v", compact, want)
	}
}

func TestCompactManifestKeyOrder(t *testing.T) {
	t.Parallel()

	p := testProject()
	builder, err := NewCompactManifestBuilder(p, Options{}, testIdentity(p))
	if err != nil {
		t.Fatalf("NewCompactManifestBuilder() error = %v", err)
	}
	payload, err := json.Marshal(builder.Build())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	keys := []string{"prefix", "name", "version", "arch", "origin", "comment", "maintainer", "www", "desc", "licenselogic", "licenses"}
	last := -1
	for _, key := range keys {
		idx := strings.Index(string(payload), `"`+key+`":`)
		if idx < 0 {
			t.Fatalf("key %q missing from %s", key, payload)
		}
		if idx <= last {
			t.Fatalf("key %q out of order in %s", key, payload)
		}
		last = idx
	}
}

func TestCompactManifestOverrides(t *testing.T) {
	t.Parallel()

	p := testProject()
	p.Description = "Prince of Denmark"
	options := Options{
		Licenses:     []string{"BSD-2-Clause", "MIT"},
		LicenseLogic: LicenseDual,
		Origin:       "sysutils/hamlet",
		Comment:      "To be packaged",
	}
	builder, err := NewCompactManifestBuilder(p, options, testIdentity(p))
	if err != nil {
		t.Fatalf("NewCompactManifestBuilder() error = %v", err)
	}
	compact := builder.Build()

	if compact.Origin != "sysutils/hamlet" || compact.Comment != "To be packaged" {
		t.Fatalf("overrides ignored: %+v", compact)
	}
	if compact.LicenseLogic != LicenseDual || len(compact.Licenses) != 2 {
		t.Fatalf("license overrides ignored: %+v", compact)
	}
	if compact.Desc != "Prince of Denmark" {
		t.Fatalf("Desc = %q", compact.Desc)
	}
}

func TestCompactManifestDefaultsUseSanitizedName(t *testing.T) {
	t.Parallel()

	p := testProject()
	p.Name = "My_Hamlet"
	builder, err := NewCompactManifestBuilder(p, Options{}, testIdentity(p))
	if err != nil {
		t.Fatalf("NewCompactManifestBuilder() error = %v", err)
	}

	if got := builder.Origin(); got != "misc/my-hamlet" {
		t.Fatalf("Origin() = %q, want misc/my-hamlet", got)
	}
	if got := builder.Comment(); got != "The my-hamlet package" {
		t.Fatalf("Comment() = %q, want %q", got, "The my-hamlet package")
	}
	compact := builder.Build()
	if compact.Name != "my-hamlet" || compact.Origin != builder.Origin() || compact.Comment != builder.Comment() {
		t.Fatalf("Build() disagrees with accessors: %+v", compact)
	}
}

func TestCompactManifestRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	p := testProject()
	_, err := NewCompactManifestBuilder(p, Options{LicenseLogic: "xor"}, testIdentity(p))
	var validation *ValidationError
	if !errors.As(err, &validation) || validation.Field != "licenselogic" {
		t.Fatalf("expected licenselogic ValidationError, got %v", err)
	}
}

func TestOptionsValidateOrigin(t *testing.T) {
	t.Parallel()

	for _, origin := range []string{"", "sysutils/hamlet", "misc/hamlet-server"} {
		if err := (Options{Origin: origin}).Validate(); err != nil {
			t.Fatalf("Validate(origin=%q) error = %v", origin, err)
		}
	}
	for _, origin := range []string{"hamlet", "/hamlet", "sysutils/", "a/b/c"} {
		var validation *ValidationError
		if err := (Options{Origin: origin}).Validate(); !errors.As(err, &validation) || validation.Field != "origin" {
			t.Fatalf("Validate(origin=%q) = %v, want origin ValidationError", origin, err)
		}
	}
}

func TestOptionsUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var options Options
	doc := "base_package_name: hamlet-server\nlicenses: [MIT]\nlicenselogic: single\norigin: net/hamlet\ncomment: Server\n"
	if err := yaml.Unmarshal([]byte(doc), &options); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if options.BaseName != "hamlet-server" || options.Origin != "net/hamlet" || options.Comment != "Server" {
		t.Fatalf("unexpected options: %+v", options)
	}
}

func TestOptionsUnmarshalYAMLErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		doc   string
		field string
	}{
		{doc: "comment: 12\n", field: "comment"},
		{doc: "comment: ''\n", field: "comment"},
		{doc: "origin: [a]\n", field: "origin"},
		{doc: "licenses: MIT\n", field: "licenses"},
		{doc: "licenses: [MIT, 3]\n", field: "licenses"},
		{doc: "licenses: ['']\n", field: "licenses"},
		{doc: "licenselogic: sometimes\n", field: "licenselogic"},
		{doc: "base_package_name: true\n", field: "base_package_name"},
	}
	for _, tc := range cases {
		var options Options
		err := yaml.Unmarshal([]byte(tc.doc), &options)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("%q: expected ValidationError, got %v", tc.doc, err)
		}
		if validation.Field != tc.field {
			t.Fatalf("%q: field = %q, want %q", tc.doc, validation.Field, tc.field)
		}
	}

	var options Options
	if err := yaml.Unmarshal([]byte("flavour: x\n"), &options); err == nil {
		t.Fatalf("expected error for unknown option")
	}
}

package pkgng

import (
	"fmt"

	"github.com/cochaviz/bsdpack/internal/project"
)

// CompactManifestBuilder derives the compact manifest from a project and the
// user's pkgng options.
type CompactManifestBuilder struct {
	project  project.Project
	options  Options
	identity Identity
}

// NewCompactManifestBuilder validates options and returns a builder.
func NewCompactManifestBuilder(p project.Project, options Options, identity Identity) (*CompactManifestBuilder, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return &CompactManifestBuilder{
		project:  p,
		options:  options,
		identity: identity,
	}, nil
}

// Origin returns the configured origin or misc/<name>.
func (b *CompactManifestBuilder) Origin() string {
	if b.options.Origin != "" {
		return b.options.Origin
	}
	return fmt.Sprintf("%s/%s", DefaultCategory, b.identity.BaseName())
}

// Comment returns the configured comment or "The <name> package".
func (b *CompactManifestBuilder) Comment() string {
	if b.options.Comment != "" {
		return b.options.Comment
	}
	return fmt.Sprintf("The %s package", b.identity.BaseName())
}

// Licenses returns the configured licenses or ["unknown"].
func (b *CompactManifestBuilder) Licenses() []string {
	if len(b.options.Licenses) > 0 {
		return append([]string(nil), b.options.Licenses...)
	}
	return []string{DefaultLicense}
}

// LicenseLogic returns the configured license logic or "single".
func (b *CompactManifestBuilder) LicenseLogic() LicenseLogic {
	if b.options.LicenseLogic != "" {
		return b.options.LicenseLogic
	}
	return DefaultLicenseLogic
}

// Build returns the compact manifest. Every key is always populated.
func (b *CompactManifestBuilder) Build() CompactManifest {
	return CompactManifest{
		Prefix:       Prefix,
		Name:         b.identity.BaseName(),
		Version:      b.identity.Version(),
		Arch:         b.identity.Architecture(),
		Origin:       b.Origin(),
		Comment:      b.Comment(),
		Maintainer:   b.project.Maintainer,
		WWW:          b.project.Homepage,
		Desc:         b.project.ResolvedDescription(),
		LicenseLogic: b.LicenseLogic(),
		Licenses:     b.Licenses(),
	}
}

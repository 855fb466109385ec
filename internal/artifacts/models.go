package artifacts

type ArtifactKind string

const (
	PackageArtifact ArtifactKind = "package" // Finished pkgng archive
)

type Artifact struct {
	ID   string
	Kind ArtifactKind
	URI  string

	Checksum    *string
	ContentType string
	Metadata    map[string]any
}

package artifacts

// ArtifactStore publishes build outputs.
type ArtifactStore interface {
	StoreArtifact(artifactPath, name string, kind ArtifactKind, metadata map[string]any) (Artifact, error)
}

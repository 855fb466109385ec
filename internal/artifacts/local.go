package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalArtifactStore publishes artifacts into BaseDir under their final name
// and records a JSON descriptor next to each one.
type LocalArtifactStore struct {
	BaseDir string
}

// StoreArtifact copies artifactPath to BaseDir/name. The copy goes through a
// temporary file in BaseDir and is renamed into place, so a failed copy never
// leaves a partial artifact under the final name.
func (store *LocalArtifactStore) StoreArtifact(artifactPath, name string, kind ArtifactKind, metadata map[string]any) (Artifact, error) {
	if store.BaseDir == "" {
		return Artifact{}, errors.New("base directory is not configured")
	}
	if artifactPath == "" {
		return Artifact{}, errors.New("artifact path is required")
	}
	if name == "" || strings.ContainsRune(name, filepath.Separator) {
		return Artifact{}, fmt.Errorf("invalid artifact name %q", name)
	}

	if err := os.MkdirAll(store.BaseDir, 0o755); err != nil {
		return Artifact{}, err
	}

	src, err := os.Open(artifactPath)
	if err != nil {
		return Artifact{}, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(store.BaseDir, "."+name+".*")
	if err != nil {
		return Artifact{}, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), src); err != nil {
		tmp.Close()
		return Artifact{}, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return Artifact{}, err
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, err
	}

	destPath, err := filepath.Abs(filepath.Join(store.BaseDir, name))
	if err != nil {
		return Artifact{}, err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Artifact{}, err
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	artifact := Artifact{
		ID:          uuid.NewString(),
		Kind:        kind,
		URI:         FileURI(destPath),
		Checksum:    &checksum,
		ContentType: detectContentType(destPath),
		Metadata:    cloneMetadata(metadata),
	}

	if err := store.writeMetadata(destPath, artifact); err != nil {
		return Artifact{}, err
	}

	return artifact, nil
}

func (store *LocalArtifactStore) writeMetadata(filePath string, artifact Artifact) error {
	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(metadataPath(filePath), payload, 0o644)
}

func metadataPath(path string) string {
	return path + ".json"
}

func detectContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txz", ".xz":
		return "application/x-xz"
	case ".pkg":
		return "application/zstd"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	cloned := make(map[string]any, len(metadata))
	for k, v := range metadata {
		cloned[k] = v
	}
	return cloned
}

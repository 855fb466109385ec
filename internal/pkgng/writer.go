package pkgng

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteManifest serializes doc as JSON into stagingDir/name.
func WriteManifest(stagingDir, name string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, name), payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadManifest decodes a manifest previously written with WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &manifest, nil
}

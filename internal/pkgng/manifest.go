package pkgng

import (
	"encoding/json"
	"fmt"
)

// Prefix is the install root recorded in every manifest. Staged paths are
// already absolute, so pkg must not prepend anything.
const Prefix = "/"

// SymlinkPlaceholder is recorded in place of a file entry for symlinks.
const SymlinkPlaceholder = "-"

// Manifest file names written at the root of the staging directory.
const (
	CompactManifestFile = "+COMPACT_MANIFEST"
	ManifestFile        = "+MANIFEST"
)

// CompactManifest identifies a package without describing its contents.
// Field order is the key order of the serialized document.
type CompactManifest struct {
	Prefix       string       `json:"prefix"`
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Arch         string       `json:"arch"`
	Origin       string       `json:"origin"`
	Comment      string       `json:"comment"`
	Maintainer   string       `json:"maintainer"`
	WWW          string       `json:"www"`
	Desc         string       `json:"desc"`
	LicenseLogic LicenseLogic `json:"licenselogic"`
	Licenses     []string     `json:"licenses"`
}

// Manifest is the compact manifest plus the package contents.
type Manifest struct {
	CompactManifest

	FlatSize    int64                     `json:"flatsize"`
	Files       map[string]FileEntry      `json:"files"`
	Directories map[string]DirectoryEntry `json:"directories"`
	Scripts     map[string]string         `json:"scripts"`
}

// FileEntry describes a regular file, or stands in for a symlink when Symlink
// is set, in which case it serializes to SymlinkPlaceholder.
type FileEntry struct {
	Sum     string
	UName   string
	GName   string
	Perm    string
	Symlink bool
}

type fileEntryDocument struct {
	Sum   string `json:"sum"`
	UName string `json:"uname"`
	GName string `json:"gname"`
	Perm  string `json:"perm"`
}

// MarshalJSON implements json.Marshaler.
func (e FileEntry) MarshalJSON() ([]byte, error) {
	if e.Symlink {
		return json.Marshal(SymlinkPlaceholder)
	}
	return json.Marshal(fileEntryDocument{Sum: e.Sum, UName: e.UName, GName: e.GName, Perm: e.Perm})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *FileEntry) UnmarshalJSON(data []byte) error {
	var placeholder string
	if err := json.Unmarshal(data, &placeholder); err == nil {
		if placeholder != SymlinkPlaceholder {
			return fmt.Errorf("unexpected file entry %q", placeholder)
		}
		*e = FileEntry{Symlink: true}
		return nil
	}

	var doc fileEntryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*e = FileEntry{Sum: doc.Sum, UName: doc.UName, GName: doc.GName, Perm: doc.Perm}
	return nil
}

// DirectoryEntry describes a directory.
type DirectoryEntry struct {
	UName string `json:"uname"`
	GName string `json:"gname"`
	Perm  string `json:"perm"`
}

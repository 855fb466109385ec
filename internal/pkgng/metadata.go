package pkgng

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// EntryKind classifies a staged filesystem entry.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
	KindSymlink   EntryKind = "symlink"
	KindOther     EntryKind = "other"
)

// Ownership forced onto every manifest entry. pkgng packages are always
// installed as root:wheel, whatever owned the staged files on the build host.
const (
	PackageOwner = "root"
	PackageGroup = "wheel"
)

// EntryMetadata is what the manifest needs to know about one staged entry.
// Perm and Size are only populated for files and directories.
type EntryMetadata struct {
	Kind EntryKind
	Perm string
	Size int64
}

// Inspect lstats path and classifies it without following symlinks.
func Inspect(path string) (EntryMetadata, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return EntryMetadata{}, fmt.Errorf("lstat %s: %w", path, err)
	}
	return metadataFromMode(uint32(st.Mode), st.Size), nil
}

func metadataFromMode(mode uint32, size int64) EntryMetadata {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return EntryMetadata{Kind: KindFile, Perm: formatPerm(mode), Size: size}
	case unix.S_IFDIR:
		return EntryMetadata{Kind: KindDirectory, Perm: formatPerm(mode), Size: size}
	case unix.S_IFLNK:
		return EntryMetadata{Kind: KindSymlink}
	default:
		return EntryMetadata{Kind: KindOther}
	}
}

// formatPerm renders the raw st_mode in octal and keeps the low-order four
// digits, so 0100644 becomes "0644" and 04755 setuid bits survive.
func formatPerm(mode uint32) string {
	octal := strconv.FormatUint(uint64(mode), 8)
	if len(octal) > 4 {
		octal = octal[len(octal)-4:]
	}
	return octal
}

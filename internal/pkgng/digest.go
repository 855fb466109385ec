package pkgng

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// digestBufferSize bounds the memory used while streaming a staged file.
const digestBufferSize = 64 * 1024

// Digest returns the hex encoded SHA-256 of the file at path. The file is
// streamed through a fixed size buffer.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &DigestError{Path: path, Err: err}
	}
	defer f.Close()

	sum, err := DigestReader(bufio.NewReaderSize(f, digestBufferSize))
	if err != nil {
		return "", &DigestError{Path: path, Err: err}
	}
	return sum, nil
}

// DigestReader returns the hex encoded SHA-256 of everything read from r.
func DigestReader(r io.Reader) (string, error) {
	hasher := sha256.New()
	buf := make([]byte, digestBufferSize)
	if _, err := io.CopyBuffer(hasher, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

package arch

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Host describes the machine the package is being built on.
type Host struct {
	Machine Machine
	Release string
}

// DetectHost reads the kernel's machine and release strings via uname(2).
func DetectHost() (Host, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return Host{}, fmt.Errorf("uname: %w", err)
	}

	machine := unix.ByteSliceToString(uts.Machine[:])
	m, err := Parse(machine)
	if err != nil {
		return Host{}, err
	}

	return Host{
		Machine: m,
		Release: unix.ByteSliceToString(uts.Release[:]),
	}, nil
}

// MajorVersion extracts the leading integer of an OS release string such as
// "13.2-RELEASE-p4" or "14".
func MajorVersion(release string) (int, error) {
	release = strings.TrimSpace(release)
	end := 0
	for end < len(release) && release[end] >= '0' && release[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("release %q does not start with a version number", release)
	}
	return strconv.Atoi(release[:end])
}

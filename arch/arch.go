package arch

import (
	"fmt"
	"sort"
	"strings"
)

// Machine is a FreeBSD hardware platform name as reported by `uname -m`/`-p`.
type Machine string

const (
	AMD64     Machine = "amd64"
	I386      Machine = "i386"
	ARM64     Machine = "arm64"
	ARMV7     Machine = "armv7"
	PowerPC64 Machine = "powerpc64"
	RISCV64   Machine = "riscv64"
)

// Supported returns the full list of supported machines.
func Supported() []Machine {
	return []Machine{
		AMD64,
		I386,
		ARM64,
		ARMV7,
		PowerPC64,
		RISCV64,
	}
}

// IsValid reports whether m matches a supported machine value.
func (m Machine) IsValid() bool {
	switch m {
	case AMD64, I386, ARM64, ARMV7, PowerPC64, RISCV64:
		return true
	default:
		return false
	}
}

// String returns the machine as string.
func (m Machine) String() string {
	return string(m)
}

// PkgngLabel returns the architecture string pkgng expects in a manifest's
// "arch" field, e.g. "x86:64" for amd64. Unsupported machines yield "".
func (m Machine) PkgngLabel() string {
	switch m {
	case AMD64:
		return "x86:64"
	case I386:
		return "x86:32"
	case ARM64:
		return "aarch64:64"
	case ARMV7:
		return "armv7:32"
	case PowerPC64:
		return "powerpc:64"
	case RISCV64:
		return "riscv:64"
	default:
		return ""
	}
}

// Parse returns the canonical Machine for the provided string or an error if unsupported.
func Parse(value string) (Machine, error) {
	if m := Normalize(value); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("unsupported machine %q (supported: %s)", value, strings.Join(supportedStrings(), ", "))
}

// Normalize maps a possibly ambiguous string into a canonical Machine. Returns ""
// when the string cannot be normalized. Linux style names are accepted so that
// staging trees can be prepared on non-FreeBSD hosts with an explicit override.
// Little-endian powerpc64 names are rejected: powerpc:64 is the big-endian ABI.
func Normalize(value string) Machine {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case string(AMD64), "x86_64", "x86-64", "x64":
		return AMD64
	case string(I386), "i486", "i586", "i686", "386", "x86":
		return I386
	case string(ARM64), "aarch64":
		return ARM64
	case string(ARMV7), "armv7l", "armhf", "arm":
		return ARMV7
	case string(PowerPC64), "ppc64":
		return PowerPC64
	case string(RISCV64), "riscv":
		return RISCV64
	default:
		return ""
	}
}

func supportedStrings() []string {
	all := Supported()
	out := make([]string, 0, len(all))
	for _, m := range all {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

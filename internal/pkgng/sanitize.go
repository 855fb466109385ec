package pkgng

import "strings"

// SanitizeName folds raw to lower case and replaces every character outside
// [a-z0-9.+-] with a single dash. Consecutive replacements are not collapsed.
// The boolean reports whether the result differs from raw.
func SanitizeName(raw string) (string, bool) {
	if isValidName(raw) {
		return raw, false
	}

	lowered := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	converted := b.String()
	return converted, converted != raw
}

// SanitizeVersion replaces every character outside [0-9A-Za-z._,-] with an
// underscore and then collapses runs of underscores into one. Values that are
// already valid are returned untouched, including any pre-existing "__".
func SanitizeVersion(raw string) (string, bool) {
	if isValidVersion(raw) {
		return raw, false
	}

	var b strings.Builder
	b.Grow(len(raw))
	lastUnderscore := false
	for _, r := range raw {
		if !isVersionRune(r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	converted := b.String()
	return converted, converted != raw
}

func isValidName(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}

func isValidVersion(value string) bool {
	for _, r := range value {
		if !isVersionRune(r) {
			return false
		}
	}
	return true
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == '+', r == '-':
		return true
	default:
		return false
	}
}

func isVersionRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-', r == ',':
		return true
	default:
		return false
	}
}

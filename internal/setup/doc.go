// Package setup holds the host-level defaults of bsdpack and the checks that
// the host can actually build packages.
//
// This package is a collection of constants and checks, and is therefore the only package that is
// allowed to call a global logger.
package setup

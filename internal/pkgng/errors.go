package pkgng

import "fmt"

// ValidationError reports a configurable manifest field with an invalid value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: must %s", e.Field, e.Reason)
}

// DigestError reports a staged file that could not be checksummed.
type DigestError struct {
	Path string
	Err  error
}

func (e *DigestError) Error() string {
	return fmt.Sprintf("digest %s: %v", e.Path, e.Err)
}

func (e *DigestError) Unwrap() error {
	return e.Err
}

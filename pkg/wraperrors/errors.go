// Package wraperrors provides the error wrapper used by generated wrapper
// code. It annotates an error with the member path where the failure
// happened, folding nested paths so a chain of generated forwards reports a
// single readable path instead of a tower of prefixes.
package wraperrors

import "strings"

// Wrap annotates err with the member path it occurred at. It returns nil for
// a nil err.
//
// When err was already wrapped by this package, the paths fold: the new path
// replaces the head segment of the previous one, so wrapping "Foo.Bar" at
// "Baz.Qux" reports "Baz.Qux.Bar". Errors wrapped by other packages in
// between break the fold and keep their own message intact.
func Wrap(path string, err error) error {
	if err == nil {
		return nil
	}

	if inner, ok := err.(*wrapError); ok {
		if _, tail, found := strings.Cut(inner.path, "."); found {
			path += "." + tail
		}
		return &wrapError{path: path, err: inner.err}
	}
	return &wrapError{path: path, err: err}
}

type wrapError struct {
	path string
	err  error
}

func (e *wrapError) Error() string {
	if e.path == "" {
		return "wrapping: " + e.err.Error()
	}
	return "wrapping " + e.path + ": " + e.err.Error()
}

func (e *wrapError) Unwrap() error { return e.err }

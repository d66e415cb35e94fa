// Package apperr defines the application's sentinel errors.
package apperr

import "errors"

// ErrMissingSetup is returned when a command requires a configured
// workspace (a marker directory) and none is present.
var ErrMissingSetup = errors.New("no codesync setup found")

// errors.go defines the top-level error kinds for the audiostretch package.

package audiostretch

import "errors"

// Top-level error kinds. Mediator.Process returns ErrMissingInput and
// ErrNoActionConfigured; it never returns ErrUnsupportedFormat, since it
// takes decoded samples rather than a wave header.
var (
	// ErrMissingInput indicates no input source was given to the Mediator.
	ErrMissingInput = errors.New("audiostretch: missing input")

	// ErrUnsupportedFormat indicates the input wave header violates an
	// invariant the core relies on (e.g. an unsupported bit depth).
	ErrUnsupportedFormat = errors.New("audiostretch: unsupported format")

	// ErrNoActionConfigured indicates Process was invoked with none of
	// stretch factor, pitch shift, resample target, or transient callback
	// set.
	ErrNoActionConfigured = errors.New("audiostretch: no action configured")
)

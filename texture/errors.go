package texture

import "errors"

// Template error kinds. ErrUnsupportedFormat is the only non-retryable
// load failure; the loader checks it before any network request.
var (
	// ErrTemplateNotFound is returned for a 404 from the asset host.
	ErrTemplateNotFound = errors.New("texture: template not found")

	// ErrUnsupportedFormat is returned when the file extension is outside
	// the allow-list, or when decoding fails.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")

	// ErrLoadFailed is returned for network failures and bad decodes
	// after all retries are exhausted.
	ErrLoadFailed = errors.New("texture: load failed")

	// ErrEmptyImage is returned when a decoded image has zero dimensions.
	ErrEmptyImage = errors.New("texture: decoded image has zero dimensions")
)

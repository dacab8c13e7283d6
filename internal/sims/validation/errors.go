package validation

import "errors"

var (
	// ErrIndexOutOfBounds is returned when a coordinate lies outside the grid.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrUnknownPattern is returned when a template id is not registered.
	ErrUnknownPattern = errors.New("unknown pattern")

	// ErrSnapshotCorrupt is returned when a serialized grid cannot be decoded.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrStepFailed is returned when a worker aborts a generation. The grid
	// is left at the previous generation.
	ErrStepFailed = errors.New("step failed")
)

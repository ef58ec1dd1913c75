package device

import "github.com/rhelper/razerctl/internal/errors"

const (
	ErrNotFound    = errors.ErrorCode("device_not_found")
	ErrReadFailed  = errors.ErrorCode("device_read_failed")
	ErrWriteFailed = errors.ErrorCode("device_write_failed")
)

// ErrNoDevice is returned by Detect when no registered driver finds a
// supported unit
var ErrNoDevice = errors.WithMessage(ErrNotFound, "no supported device detected")

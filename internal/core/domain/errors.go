package domain

import "errors"

var (
	// ErrInvalidConfig is returned when a limiter is constructed with a
	// non-positive window or request budget. The instance must not be used.
	ErrInvalidConfig = errors.New("window and max requests must be positive")
)

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

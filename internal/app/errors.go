package app

import "fmt"

// ErrConfig represents a configuration error, such as an unparseable DSN.
// Connection and query failures keep their store-level types so callers can
// inspect the driver cause.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

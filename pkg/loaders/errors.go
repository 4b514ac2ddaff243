package loaders

import (
	"errors"
	"fmt"
)

// ErrPoolStopped is returned by Submit after Stop
var ErrPoolStopped = errors.New("loader pool stopped")

// LoadError reports a failed asset load. It is the only error kind the
// viewer surfaces from asset loading.
type LoadError struct {
	Asset string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Asset, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var errNoNode = errors.New("source returned no node")

var errPanic = errors.New("loader panicked")

package ttyrender

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when operating on a closed Compositor.
var ErrClosed = errors.New("ttyrender: compositor closed")

// ErrNilDeviceHandle is returned by New when the supplied gpu.DeviceHandle
// is nil.
var ErrNilDeviceHandle = errors.New("ttyrender: device handle is nil")

// ErrNilWindowHandle is returned by New when the supplied gpu.WindowHandle
// is nil.
var ErrNilWindowHandle = errors.New("ttyrender: window handle is nil")

// InitError wraps a failure that occurred while constructing a Compositor:
// config validation, initial surface configuration, pipeline or atlas
// texture creation, or bind group creation. Initialization failures abort
// construction rather than returning a partially-usable Compositor.
type InitError struct {
	// Stage names the construction step that failed: "config", "surface",
	// "pipeline", "atlas texture", or "bind groups".
	Stage string

	// Err is the underlying cause.
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("ttyrender: init failed at %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

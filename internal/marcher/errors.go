package marcher

import (
	"errors"
	"fmt"
)

// ErrTraceDivergence is reported when a contour walk does not return to its
// start corner within the step budget.
var ErrTraceDivergence = errors.New("contour trace did not close")

// ConfigurationError reports grid inputs that cannot describe a grid.
// It is fatal for construction; no partial result is produced.
type ConfigurationError struct {
	Width  int
	Height int
	Tiles  int
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid grid configuration (%dx%d, %d tiles): %s", e.Width, e.Height, e.Tiles, e.Reason)
	}
	return fmt.Sprintf("invalid grid configuration: %dx%d needs %d tiles, got %d",
		e.Width, e.Height, e.Width*e.Height, e.Tiles)
}

// TraceError describes a single discarded trace.
type TraceError struct {
	StartX int
	StartY int
	Steps  int
	Err    error
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("trace from (%d,%d) after %d steps: %v", e.StartX, e.StartY, e.Steps, e.Err)
}

func (e *TraceError) Unwrap() error {
	return e.Err
}

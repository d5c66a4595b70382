package engine

import (
	"errors"
	"fmt"

	"github.com/redactyl/gdprmask/internal/types"
)

// ErrInvalidText is returned when the input is not valid UTF-8.
var ErrInvalidText = errors.New("engine: text is not valid UTF-8")

// DetectorFailure records a detector that errored or panicked. The pipeline
// continues without that detector's spans; failures are logged and handed to
// the failure hook but never returned from Anonymize.
type DetectorFailure struct {
	Method types.Method
	Err    error
}

func (f *DetectorFailure) Error() string {
	return fmt.Sprintf("detector %s failed: %v", f.Method, f.Err)
}

func (f *DetectorFailure) Unwrap() error { return f.Err }

package notify

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every payload construction error.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

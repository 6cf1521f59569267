package uart

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedPlatform is returned by OpenPort where serial ports
	// cannot be configured
	ErrUnsupportedPlatform = errors.New("serial ports are not supported on this platform")

	// ErrUnsupportedBaud is matched by *BaudError
	ErrUnsupportedBaud = errors.New("unsupported baud rate")

	// ErrClosed is returned when using a closed session
	ErrClosed = errors.New("session closed")
)

// BaudError indicates a baud rate outside BaudRates.
type BaudError struct {
	Baud int
}

func (e *BaudError) Error() string {
	return fmt.Sprintf("unsupported baud rate %d: supported rates are %v", e.Baud, BaudRates())
}

func (e *BaudError) Is(target error) bool {
	return target == ErrUnsupportedBaud
}

// timeout is implemented by errors such as os.ErrDeadlineExceeded.
type timeout interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	var t timeout
	return errors.As(err, &t) && t.Timeout()
}

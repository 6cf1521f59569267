package uart

import "time"

// Serial line defaults.
const (
	// DefaultBaud is the console UART speed
	DefaultBaud = 115200

	// LineTerminator is appended to every line sent by WriteLine
	LineTerminator = "\r\n"

	// DefaultReadTimeout bounds how long a single port read may block, so
	// that cancellation is noticed
	DefaultReadTimeout = 500 * time.Millisecond

	// DefaultMaxLineLength is the longest line delivered in one piece.
	// Longer runs without a newline are split.
	DefaultMaxLineLength = 4096

	// readBufferSize is the size of a single port read
	readBufferSize = 256
)

// BaudRates lists the supported baud rates in ascending order.
func BaudRates() []int {
	return []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}
}

// ValidateBaud returns an error wrapping ErrUnsupportedBaud if baud is not
// one of BaudRates.
func ValidateBaud(baud int) error {
	for _, b := range BaudRates() {
		if b == baud {
			return nil
		}
	}
	return &BaudError{Baud: baud}
}

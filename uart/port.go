package uart

import "time"

// PortOption configures OpenPort.
type PortOption func(*portConfig)

type portConfig struct {
	readTimeout time.Duration
}

func defaultPortConfig() portConfig {
	return portConfig{readTimeout: DefaultReadTimeout}
}

// WithReadTimeout bounds how long a single Read may block waiting for data.
// The tty resolution is 100ms; shorter positive values are rounded up.
// Non-positive values are ignored.
//
// Example:
//
//	port, err := uart.OpenPort("/dev/ttyUSB0", 115200, uart.WithReadTimeout(time.Second))
func WithReadTimeout(d time.Duration) PortOption {
	return func(c *portConfig) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// vtime converts a read timeout to tenths of a second for the VTIME
// control character, clamped to 1..255.
func vtime(d time.Duration) uint8 {
	tenths := (d + 100*time.Millisecond - 1) / (100 * time.Millisecond)
	if tenths < 1 {
		return 1
	}
	if tenths > 255 {
		return 255
	}
	return uint8(tenths)
}

// Package uart provides a line-oriented terminal session over a serial port.
//
// # Overview
//
// A Session wraps any io.ReadWriteCloser and exchanges text lines with the
// device on the other end:
//   - WriteLine sends a line terminated by CR LF
//   - ReadLines delivers every received line to a callback until the
//     context is cancelled or the port fails
//   - RunTerminal bridges a local reader/writer pair (usually stdin/stdout)
//     to the session
//
// # Basic Usage
//
//	port, err := uart.OpenPort("/dev/ttyUSB0", uart.DefaultBaud)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess := uart.New(port, uart.WithLogger(myLogger))
//	defer sess.Close()
//
//	err = uart.RunTerminal(ctx, sess, os.Stdin, os.Stdout)
//
// # Hardware Independence
//
// OpenPort configures a tty on linux (raw mode, 8N1, the requested baud rate
// and a short read timeout). On other platforms it returns
// ErrUnsupportedPlatform; callers can still build a Session over any
// io.ReadWriteCloser they open themselves:
//
//	sess := uart.New(myUSBBridge)
//
// Read implementations may return (0, nil) or a timeout error when no data
// is available; the session keeps listening in both cases.
package uart

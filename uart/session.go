package uart

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Session exchanges text lines with a device over a serial link.
//
// WriteLine may be called concurrently with ReadLines. Only one ReadLines
// call should be active at a time.
type Session struct {
	port   io.ReadWriteCloser
	config Config

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// New creates a new Session over port with the given options.
//
// Example:
//
//	port, _ := uart.OpenPort("/dev/ttyUSB0", uart.DefaultBaud)
//	sess := uart.New(port, uart.WithLogger(myLogger))
func New(port io.ReadWriteCloser, opts ...Option) *Session {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		port:   port,
		config: cfg,
		closed: make(chan struct{}),
	}
}

// WriteLine sends line followed by the configured line terminator.
func (s *Session) WriteLine(line string) error {
	if s.isClosed() {
		return ErrClosed
	}

	frame := line + s.config.LineTerminator

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.logDebug("sending line", "line", line)

	if err := writeFull(s.port, []byte(frame)); err != nil {
		s.logError("write failed", "error", err)
		return errors.Wrap(err, "failed to write line")
	}
	return nil
}

// ReadLines reads from the port and calls fn for every complete line.
// Line terminators (CR and LF) are stripped and invalid UTF-8 is replaced
// with U+FFFD.
//
// Read timeouts and empty reads are ignored. ReadLines returns nil when the
// port reaches EOF, after delivering any pending partial line. Ports must
// report a hangup as io.EOF rather than as an empty read. It returns
// ctx.Err() when ctx is cancelled and ErrClosed after Close.
func (s *Session) ReadLines(ctx context.Context, fn LineHandler) error {
	if fn == nil {
		return errors.New("line handler cannot be nil")
	}

	var pending []byte
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return ErrClosed
		default:
		}

		n, err := s.port.Read(buf)
		if n > 0 {
			pending = s.deliver(append(pending, buf[:n]...), fn)
		}

		if err == nil || isTimeout(err) {
			continue
		}

		if s.isClosed() {
			return ErrClosed
		}

		if errors.Is(err, io.EOF) {
			if len(pending) > 0 {
				s.emit(pending, fn)
			}
			s.logDebug("port reached EOF")
			return nil
		}

		s.logError("read failed", "error", err)
		return errors.Wrap(err, "failed to read from port")
	}
}

// deliver emits every complete line in data and returns the unterminated
// remainder. Runs longer than MaxLineLength are split.
func (s *Session) deliver(data []byte, fn LineHandler) []byte {
	limit := s.config.MaxLineLength

	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		switch {
		case i >= 0 && len(bytes.TrimRight(data[:i], "\r")) <= limit:
			s.emit(data[:i], fn)
			data = data[i+1:]
		case len(data) > limit:
			s.emit(data[:limit], fn)
			data = data[limit:]
		default:
			// Copy so the read buffer can be reused.
			return append([]byte(nil), data...)
		}
	}
	return nil
}

func (s *Session) emit(raw []byte, fn LineHandler) {
	line := strings.TrimRight(string(raw), "\r\n")
	line = strings.ToValidUTF8(line, "\uFFFD")
	s.logDebug("received line", "line", line)
	fn(line)
}

// Close closes the underlying port. It is safe to call Close more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.closeErr = s.port.Close()
		if s.closeErr != nil {
			s.logError("close failed", "error", s.closeErr)
		}
	})
	return s.closeErr
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func writeFull(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}

// Logging helpers

func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}

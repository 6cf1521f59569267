//go:build linux

package uart

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var baudFlags = map[int]uint32{
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
	460800: unix.B460800,
	921600: unix.B921600,
}

// Port is an open serial tty configured for raw 8N1 transfer.
//
// Read returns (0, nil) when no data arrives within the read timeout and
// io.EOF once the line hangs up, for example when a USB adapter is
// unplugged.
type Port struct {
	name    string
	fd      int
	timeout int // poll timeout in milliseconds

	mu     sync.Mutex
	closed bool
}

// OpenPort opens the tty at name and configures it for raw 8N1 transfer at
// baud.
//
// Example:
//
//	port, err := uart.OpenPort("/dev/ttyUSB0", uart.DefaultBaud)
//	if err != nil {
//	    return err
//	}
//	defer port.Close()
func OpenPort(name string, baud int, opts ...PortOption) (*Port, error) {
	if err := ValidateBaud(baud); err != nil {
		return nil, err
	}

	cfg := defaultPortConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// O_NONBLOCK keeps open from waiting for carrier detect.
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", name)
	}

	if err := configure(fd, baudFlags[baud], vtime(cfg.readTimeout)); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "failed to configure %s", name)
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "failed to configure %s", name)
	}

	return &Port{name: name, fd: fd, timeout: int(cfg.readTimeout / time.Millisecond)}, nil
}

func configure(fd int, speed uint32, timeout uint8) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL | speed
	t.Ispeed = speed
	t.Ospeed = speed
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = timeout

	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}

// Name returns the device path the port was opened with.
func (p *Port) Name() string {
	return p.name
}

// Read reads up to len(b) bytes. os.File is not used because it reports a
// zero-byte read as EOF, while a tty returns zero bytes on timeout. A
// zero-byte read after poll reported the fd readable is a hangup.
func (p *Port) Read(b []byte) (int, error) {
	for {
		fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
		ready, err := unix.Poll(fds, p.timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, errors.Wrapf(err, "poll %s", p.name)
		}
		if ready == 0 {
			return 0, nil
		}

		revents := fds[0].Revents
		if revents&unix.POLLIN == 0 && revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			return 0, io.EOF
		}

		n, err := unix.Read(p.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EIO {
			return 0, io.EOF
		}
		if err != nil {
			return 0, errors.Wrapf(err, "read %s", p.name)
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (p *Port) Write(b []byte) (int, error) {
	for {
		n, err := unix.Write(p.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, errors.Wrapf(err, "write %s", p.name)
		}
		return n, nil
	}
}

// Close releases the tty. It is safe to call Close more than once.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}

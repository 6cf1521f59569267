//go:build !linux

package uart

// Port is an open serial tty. It cannot be opened on this platform.
type Port struct {
	name string
}

// OpenPort validates baud and returns ErrUnsupportedPlatform.
func OpenPort(name string, baud int, opts ...PortOption) (*Port, error) {
	if err := ValidateBaud(baud); err != nil {
		return nil, err
	}
	return nil, ErrUnsupportedPlatform
}

// Name returns the device path the port was opened with.
func (p *Port) Name() string {
	return p.name
}

func (p *Port) Read(b []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func (p *Port) Write(b []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

// Close is a no-op.
func (p *Port) Close() error {
	return nil
}

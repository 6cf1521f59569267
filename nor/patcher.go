package nor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Patcher performs validated, idempotent writes on NOR images.
//
// Every operation follows the same sequence:
//  1. Validate the argument, before any I/O
//  2. Copy the source to the destination, unless they are the same file
//  3. Open the destination read-write and write the field(s)
//
// The source is never modified when a distinct destination is given.
// Patcher is safe for concurrent use on distinct paths.
type Patcher struct {
	config Config
}

// NewPatcher creates a new Patcher with the given options.
//
// Example:
//
//	p := nor.NewPatcher(nor.WithLogger(myLogger))
func NewPatcher(opts ...Option) *Patcher {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Patcher{config: cfg}
}

var defaultPatcher = NewPatcher()

// ConvertEdition converts src to the target edition using a Patcher without
// logging. An empty dst edits src in place.
func ConvertEdition(src string, target Edition, dst string) error {
	return defaultPatcher.ConvertEdition(src, target, dst)
}

// SetConsoleSerial writes the console serial using a Patcher without logging.
func SetConsoleSerial(src, serial, dst string) error {
	return defaultPatcher.SetConsoleSerial(src, serial, dst)
}

// SetMoboSerial writes the motherboard serial using a Patcher without logging.
func SetMoboSerial(src, serial, dst string) error {
	return defaultPatcher.SetMoboSerial(src, serial, dst)
}

// Scan reads the metadata of the image at path.
func (p *Patcher) Scan(path string) (*Info, error) {
	info, err := Scan(path)
	if err != nil {
		return nil, err
	}

	p.logDebug("scanned image",
		"path", path,
		"size", info.Size,
		"edition", info.Edition.String(),
	)
	return info, nil
}

// ConvertEdition rewrites the edition flags of the image to target.
//
// Both canonical flag offsets are overwritten, then the whole image is swept
// and every occurrence of another edition's flag is replaced by the target
// flag. If the image already declares target, nothing is written beyond the
// copy to dst.
func (p *Patcher) ConvertEdition(src string, target Edition, dst string) error {
	targetFlag := target.Flag()
	if targetFlag == nil {
		return &InvalidEditionError{Name: target.String()}
	}

	path, err := p.prepareTarget(src, dst)
	if err != nil {
		return err
	}

	return p.withImage(path, func(img *Image) error {
		current, err := DetectEdition(img)
		if err != nil {
			return err
		}
		if current == target {
			p.logInfo("edition unchanged", "path", path, "edition", target.String())
			return nil
		}

		if err := img.WriteField(FieldEditionA, targetFlag); err != nil {
			return err
		}
		if err := img.WriteField(FieldEditionB, targetFlag); err != nil {
			return err
		}

		blob, err := img.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot image: %w", err)
		}

		replaced := sweepFlags(blob, target)
		if replaced > 0 {
			if err := img.WriteAt(0, blob); err != nil {
				return err
			}
		}

		p.logInfo("converted edition",
			"path", path,
			"from", current.String(),
			"to", target.String(),
			"redundant_flags", replaced,
		)
		return nil
	})
}

// SetConsoleSerial writes serial to the console serial field.
// The serial must be 1 to ConsoleSerialLength bytes.
func (p *Patcher) SetConsoleSerial(src, serial, dst string) error {
	return p.setSerial(FieldConsoleSerial, src, serial, dst)
}

// SetMoboSerial writes serial to the motherboard serial field.
// The serial must be 1 to MoboSerialLength bytes.
func (p *Patcher) SetMoboSerial(src, serial, dst string) error {
	return p.setSerial(FieldMoboSerial, src, serial, dst)
}

func (p *Patcher) setSerial(f Field, src, serial, dst string) error {
	if serial == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, f.Name)
	}
	data, err := EncodeField(f, serial)
	if err != nil {
		return err
	}

	path, err := p.prepareTarget(src, dst)
	if err != nil {
		return err
	}

	return p.withImage(path, func(img *Image) error {
		if err := img.WriteField(f, data); err != nil {
			return err
		}
		p.logInfo("wrote serial", "path", path, "field", f.Name, "value", serial)
		return nil
	})
}

// withImage opens path read-write, checks its size and runs fn.
func (p *Patcher) withImage(path string, fn func(*Image) error) (err error) {
	img, err := OpenWritable(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := img.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := img.CheckSize(); err != nil {
		return err
	}
	if err := fn(img); err != nil {
		p.logError("patch failed", "path", path, "error", err)
		return err
	}
	return nil
}

// prepareTarget returns the path to edit. When dst names a file other than
// src, src is copied to dst first.
func (p *Patcher) prepareTarget(src, dst string) (string, error) {
	st, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, src)
		}
		return "", fmt.Errorf("failed to stat image: %w", err)
	}
	if st.Size() < MinImageSize {
		return "", &ImageTooSmallError{Path: src, Size: st.Size(), Required: MinImageSize}
	}

	if dst == "" || samePath(src, dst) {
		return src, nil
	}

	// The copy is edited next, so it must stay owner-writable.
	if err := copyFile(src, dst, st.Mode().Perm()|0o200); err != nil {
		return "", err
	}
	p.logDebug("copied image", "src", src, "dst", dst, "bytes", st.Size())
	return dst, nil
}

// samePath reports whether a and b resolve to the same file.
func samePath(a, b string) bool {
	if sa, err := os.Stat(a); err == nil {
		if sb, err := os.Stat(b); err == nil {
			return os.SameFile(sa, sb)
		}
	}
	return resolvePath(a) == resolvePath(b)
}

func resolvePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}

func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination: %w", cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy image: %w", err)
	}
	return out.Sync()
}

// sweepFlags replaces every non-overlapping occurrence of each non-target
// flag in blob with the target flag. Flags are handled one at a time in
// Editions order, scanning left to right and resuming after each
// replacement. It returns the number of replacements.
func sweepFlags(blob []byte, target Edition) int {
	replaced := 0
	for _, e := range Editions() {
		if e == target {
			continue
		}
		replaced += replaceAll(blob, e.Flag(), target.Flag())
	}
	return replaced
}

// replaceAll overwrites occurrences of find with repl in place. Both
// patterns must have the same length.
func replaceAll(buf, find, repl []byte) int {
	count := 0
	pos := 0
	for pos <= len(buf)-len(find) {
		i := bytes.Index(buf[pos:], find)
		if i < 0 {
			break
		}
		at := pos + i
		copy(buf[at:at+len(find)], repl)
		pos = at + len(find)
		count++
	}
	return count
}

// logDebug logs a debug message if a logger is configured.
func (p *Patcher) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (p *Patcher) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Patcher) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}

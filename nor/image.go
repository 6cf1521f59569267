package nor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-multierror"
)

// Image is a random-access session over a NOR dump on disk.
//
// Reads and writes are positioned and bounds-checked against the file size
// captured at open time. Writes are visible to later reads of the same
// session and are synced to disk by Close.
//
// An Image is not safe for concurrent use.
type Image struct {
	path     string
	file     *os.File
	size     int64
	writable bool
	dirty    bool
}

// Open opens the image at path read-only.
func Open(path string) (*Image, error) {
	return openImage(path, os.O_RDONLY)
}

// OpenWritable opens the image at path for reading and in-place writing.
func OpenWritable(path string) (*Image, error) {
	return openImage(path, os.O_RDWR)
}

func openImage(path string, flag int) (*Image, error) {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, path)
	}

	return &Image{
		path:     path,
		file:     f,
		size:     st.Size(),
		writable: flag&os.O_RDWR != 0,
	}, nil
}

// Path returns the path the image was opened from.
func (img *Image) Path() string {
	return img.path
}

// Size returns the image size in bytes.
func (img *Image) Size() int64 {
	return img.size
}

// Writable reports whether the session was opened for writing.
func (img *Image) Writable() bool {
	return img.writable
}

// CheckSize returns an *ImageTooSmallError if the image cannot hold every
// known field.
func (img *Image) CheckSize() error {
	if img.size < MinImageSize {
		return &ImageTooSmallError{
			Path:     img.path,
			Size:     img.size,
			Required: MinImageSize,
		}
	}
	return nil
}

func (img *Image) checkRange(op string, offset int64, length int) error {
	if offset < 0 || length < 0 || offset+int64(length) > img.size {
		return &RangeError{
			Op:     op,
			Offset: offset,
			Length: length,
			Size:   img.size,
		}
	}
	return nil
}

// ReadAt returns exactly length bytes starting at offset.
func (img *Image) ReadAt(offset int64, length int) ([]byte, error) {
	if err := img.checkRange("read", offset, length); err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	if _, err := img.file.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("read 0x%X: %w", offset, err)
	}
	return buf, nil
}

// WriteAt overwrites len(data) bytes starting at offset.
func (img *Image) WriteAt(offset int64, data []byte) error {
	if !img.writable {
		return fmt.Errorf("%w: %s opened read-only", ErrNotWritable, img.path)
	}
	if err := img.checkRange("write", offset, len(data)); err != nil {
		return err
	}

	if _, err := img.file.WriteAt(data, offset); err != nil {
		return fmt.Errorf("write 0x%X: %w", offset, err)
	}
	img.dirty = true
	return nil
}

// ReadField returns the raw bytes of f.
func (img *Image) ReadField(f Field) ([]byte, error) {
	return img.ReadAt(f.Offset, f.Length)
}

// WriteField overwrites f with data, which must be exactly f.Length bytes.
func (img *Image) WriteField(f Field, data []byte) error {
	if len(data) != f.Length {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrInvalidArgument, f.Name, f.Length, len(data))
	}
	return img.WriteAt(f.Offset, data)
}

// Snapshot returns a copy of the whole image.
func (img *Image) Snapshot() ([]byte, error) {
	return img.ReadAt(0, int(img.size))
}

// Close syncs pending writes and releases the file.
func (img *Image) Close() error {
	if img.file == nil {
		return nil
	}

	var result *multierror.Error
	if img.writable && img.dirty {
		if err := img.file.Sync(); err != nil {
			result = multierror.Append(result, fmt.Errorf("sync image: %w", err))
		}
	}
	if err := img.file.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close image: %w", err))
	}
	img.file = nil

	return result.ErrorOrNil()
}

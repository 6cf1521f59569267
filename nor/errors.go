package nor

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this package that belongs to one
// of these classes matches it with errors.Is.
var (
	ErrImageNotFound   = errors.New("image not found")
	ErrImageTooSmall   = errors.New("image too small")
	ErrOutOfRange      = errors.New("access out of range")
	ErrNotWritable     = errors.New("image not writable")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValueTooLong is a specialization of ErrInvalidArgument.
	ErrValueTooLong = errors.New("value too long")
)

// RangeError indicates an access beyond the end of the image.
type RangeError struct {
	// Op is "read" or "write"
	Op     string
	Offset int64
	Length int
	Size   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s of %d bytes at 0x%X out of range: image is %d bytes",
		e.Op, e.Length, e.Offset, e.Size)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ImageTooSmallError indicates an image that does not contain every known field.
type ImageTooSmallError struct {
	Path     string
	Size     int64
	Required int64
}

func (e *ImageTooSmallError) Error() string {
	return fmt.Sprintf("image %s too small: got %d bytes, need at least %d",
		e.Path, e.Size, e.Required)
}

func (e *ImageTooSmallError) Is(target error) bool {
	return target == ErrImageTooSmall
}

// ValueTooLongError indicates a value that does not fit its field.
type ValueTooLongError struct {
	Field  string
	Length int
	Max    int
}

func (e *ValueTooLongError) Error() string {
	return fmt.Sprintf("%s value too long: got %d bytes, maximum is %d",
		e.Field, e.Length, e.Max)
}

func (e *ValueTooLongError) Is(target error) bool {
	return target == ErrValueTooLong || target == ErrInvalidArgument
}

// InvalidEditionError indicates an edition name outside the known set.
type InvalidEditionError struct {
	Name string
}

func (e *InvalidEditionError) Error() string {
	return fmt.Sprintf("invalid edition %q: must be one of digital, disc, slim", e.Name)
}

func (e *InvalidEditionError) Is(target error) bool {
	return target == ErrInvalidArgument
}

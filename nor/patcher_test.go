package nor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFlag(data []byte, e Edition) int {
	return bytes.Count(data, e.Flag())
}

func TestConvertEdition(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())

	require.NoError(t, ConvertEdition(path, EditionDigital, ""))

	info, err := Scan(path)
	require.NoError(t, err)
	assert.Equal(t, EditionDigital, info.Edition)

	data := readFile(t, path)
	assert.Equal(t, FlagDigital, data[EditionFlagOffsetA:EditionFlagOffsetA+EditionFlagLength])
	assert.Equal(t, FlagDigital, data[EditionFlagOffsetB:EditionFlagOffsetB+EditionFlagLength])
}

func TestConvertEditionSweep(t *testing.T) {
	for _, target := range Editions() {
		t.Run(target.String(), func(t *testing.T) {
			f := defaultFakeImage()
			if target == EditionDisc {
				f.flagA = FlagSlim
				f.flagB = FlagSlim
			}
			f.extra = map[int64][]byte{
				0x10:     FlagSlim,
				0x100:    FlagDisc,
				0x200:    FlagDigital,
				0x1000:   append(append([]byte{}, FlagDisc...), FlagSlim...),
				0x2000:   append(append([]byte{}, FlagDigital...), FlagDisc...),
				0x1C7100: FlagSlim,
			}
			path := writeFakeImage(t, f)

			require.NoError(t, ConvertEdition(path, target, ""))

			data := readFile(t, path)
			for _, e := range Editions() {
				if e == target {
					continue
				}
				assert.Zero(t, countFlag(data, e), "%s flags left after converting to %s", e, target)
			}
			assert.Equal(t, target.Flag(), data[EditionFlagOffsetA:EditionFlagOffsetA+EditionFlagLength])
			assert.Equal(t, target.Flag(), data[EditionFlagOffsetB:EditionFlagOffsetB+EditionFlagLength])
			// 2 canonical + 8 planted copies
			assert.Equal(t, 10, countFlag(data, target))
		})
	}
}

func TestConvertEditionLeavesOtherBytes(t *testing.T) {
	f := defaultFakeImage()
	f.extra = map[int64][]byte{0x400: FlagSlim}
	path := writeFakeImage(t, f)
	before := readFile(t, path)

	require.NoError(t, ConvertEdition(path, EditionDigital, ""))
	after := readFile(t, path)

	require.Len(t, after, len(before))
	changed := map[int64]bool{}
	for _, off := range []int64{0x400, EditionFlagOffsetA, EditionFlagOffsetB} {
		for i := int64(0); i < EditionFlagLength; i++ {
			changed[off+i] = true
		}
	}
	for i := range before {
		if !changed[int64(i)] && before[i] != after[i] {
			t.Fatalf("byte 0x%X changed: 0x%02X -> 0x%02X", i, before[i], after[i])
		}
	}
}

func TestConvertEditionIdempotent(t *testing.T) {
	f := defaultFakeImage()
	// A stray flag outside the canonical offsets is left alone when the
	// image already declares the target.
	f.extra = map[int64][]byte{0x800: FlagSlim}
	path := writeFakeImage(t, f)
	before := readFile(t, path)

	for i := 0; i < 3; i++ {
		require.NoError(t, ConvertEdition(path, EditionDisc, ""))
		assert.Equal(t, before, readFile(t, path))

		info, err := Scan(path)
		require.NoError(t, err)
		assert.Equal(t, EditionDisc, info.Edition)
	}
}

func TestConvertEditionRepeatedTarget(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())

	require.NoError(t, ConvertEdition(path, EditionSlim, ""))
	first := readFile(t, path)

	require.NoError(t, ConvertEdition(path, EditionSlim, ""))
	assert.Equal(t, first, readFile(t, path))
}

func TestConvertEditionToDestination(t *testing.T) {
	src := writeFakeImage(t, defaultFakeImage())
	original := readFile(t, src)
	dst := filepath.Join(t.TempDir(), "out.bin")

	require.NoError(t, ConvertEdition(src, EditionDigital, dst))

	assert.Equal(t, original, readFile(t, src), "source must not change")

	info, err := Scan(dst)
	require.NoError(t, err)
	assert.Equal(t, EditionDigital, info.Edition)
	assert.Equal(t, "PS5TESTSERIAL123", info.ConsoleSerial)
}

func TestReadOnlySourceToDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	src := writeFakeImage(t, defaultFakeImage())
	require.NoError(t, os.Chmod(src, 0o444))
	dir := t.TempDir()

	dst := filepath.Join(dir, "digital.bin")
	require.NoError(t, ConvertEdition(src, EditionDigital, dst))
	info, err := Scan(dst)
	require.NoError(t, err)
	assert.Equal(t, EditionDigital, info.Edition)

	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.NotZero(t, st.Mode().Perm()&0o200, "destination must be owner-writable")

	serialDst := filepath.Join(dir, "serial.bin")
	require.NoError(t, SetConsoleSerial(src, "NEWSERIAL", serialDst))
	info, err = Scan(serialDst)
	require.NoError(t, err)
	assert.Equal(t, "NEWSERIAL", info.ConsoleSerial)
}

func TestConvertEditionNoOpStillCopies(t *testing.T) {
	src := writeFakeImage(t, defaultFakeImage())
	dst := filepath.Join(t.TempDir(), "copy.bin")

	require.NoError(t, ConvertEdition(src, EditionDisc, dst))
	assert.Equal(t, readFile(t, src), readFile(t, dst))
}

func TestConvertEditionSameFileDestination(t *testing.T) {
	src := writeFakeImage(t, defaultFakeImage())
	link := filepath.Join(t.TempDir(), "link.bin")
	require.NoError(t, os.Symlink(src, link))

	require.NoError(t, ConvertEdition(src, EditionSlim, link))

	info, err := Scan(src)
	require.NoError(t, err)
	assert.Equal(t, EditionSlim, info.Edition)

	st, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, st.Mode()&os.ModeSymlink, "destination must stay a link to the source")
}

func TestConvertEditionUnknownToTarget(t *testing.T) {
	f := defaultFakeImage()
	f.flagA = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	f.flagB = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	path := writeFakeImage(t, f)

	require.NoError(t, ConvertEdition(path, EditionDisc, ""))

	info, err := Scan(path)
	require.NoError(t, err)
	assert.Equal(t, EditionDisc, info.Edition)
}

func TestConvertEditionErrors(t *testing.T) {
	dir := t.TempDir()
	valid := writeFakeImage(t, defaultFakeImage())
	small := writeTempFile(t, "small.bin", make([]byte, 64))

	tests := []struct {
		name    string
		src     string
		target  Edition
		dst     string
		wantErr error
	}{
		{name: "unknown target", src: valid, target: EditionUnknown, wantErr: ErrInvalidArgument},
		{name: "out of range target", src: valid, target: Edition(9), wantErr: ErrInvalidArgument},
		{name: "missing source", src: filepath.Join(dir, "missing.bin"), target: EditionDisc, wantErr: ErrImageNotFound},
		{name: "small source", src: small, target: EditionDisc, dst: filepath.Join(dir, "out.bin"), wantErr: ErrImageTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ConvertEdition(tt.src, tt.target, tt.dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "out.bin"))
	assert.True(t, os.IsNotExist(err), "no destination is created for a rejected image")
}

func TestConvertEditionCopyFailure(t *testing.T) {
	src := writeFakeImage(t, defaultFakeImage())
	original := readFile(t, src)
	dst := filepath.Join(t.TempDir(), "no-such-dir", "out.bin")

	err := ConvertEdition(src, EditionDigital, dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create destination")
	assert.Equal(t, original, readFile(t, src))
}

func TestSetSerials(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())

	require.NoError(t, SetConsoleSerial(path, "NEWCONSOLESN", ""))
	require.NoError(t, SetMoboSerial(path, "NEWMOBO123", ""))

	info, err := Scan(path)
	require.NoError(t, err)
	assert.Equal(t, "NEWCONSOLESN", info.ConsoleSerial)
	assert.Equal(t, "NEWMOBO123", info.MoboSerial)

	// Untouched fields.
	assert.Equal(t, EditionDisc, info.Edition)
	assert.Equal(t, "CFI-1016A", info.ModelNumber)
	assert.Equal(t, "A1B2C3D4E5F6", info.WiFiMAC)
	assert.Equal(t, "010203040506", info.LANMAC)
}

func TestSetSerialWritesOnlyField(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())
	before := readFile(t, path)

	require.NoError(t, SetConsoleSerial(path, "AB", ""))
	after := readFile(t, path)

	field := after[ConsoleSerialOffset : ConsoleSerialOffset+ConsoleSerialLength]
	want := append([]byte("AB"), make([]byte, ConsoleSerialLength-2)...)
	assert.Equal(t, want, field)

	copy(after[ConsoleSerialOffset:], before[ConsoleSerialOffset:ConsoleSerialOffset+ConsoleSerialLength])
	assert.Equal(t, before, after, "bytes outside the field must not change")
}

func TestSetSerialFullLength(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())

	require.NoError(t, SetConsoleSerial(path, "12345678901234567", ""))
	require.NoError(t, SetMoboSerial(path, "1234567890123456", ""))

	info, err := Scan(path)
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567", info.ConsoleSerial)
	assert.Equal(t, "1234567890123456", info.MoboSerial)
}

func TestSetSerialInvalid(t *testing.T) {
	tests := []struct {
		name    string
		set     func(src, serial, dst string) error
		serial  string
		wantErr error
	}{
		{name: "console too long", set: SetConsoleSerial, serial: "123456789012345678", wantErr: ErrValueTooLong},
		{name: "console empty", set: SetConsoleSerial, serial: "", wantErr: ErrInvalidArgument},
		{name: "mobo too long", set: SetMoboSerial, serial: "12345678901234567", wantErr: ErrValueTooLong},
		{name: "mobo empty", set: SetMoboSerial, serial: "", wantErr: ErrInvalidArgument},
		{name: "non latin1", set: SetConsoleSerial, serial: "序列号", wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFakeImage(t, defaultFakeImage())
			before := readFile(t, path)
			dst := filepath.Join(t.TempDir(), "out.bin")

			err := tt.set(path, tt.serial, dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			assert.Equal(t, before, readFile(t, path))
			_, statErr := os.Stat(dst)
			assert.True(t, os.IsNotExist(statErr), "destination must not be created")
		})
	}
}

func TestSetSerialToDestination(t *testing.T) {
	src := writeFakeImage(t, defaultFakeImage())
	original := readFile(t, src)
	dst := filepath.Join(t.TempDir(), "out.bin")

	require.NoError(t, SetMoboSerial(src, "NEWMOBO", dst))

	assert.Equal(t, original, readFile(t, src))
	info, err := Scan(dst)
	require.NoError(t, err)
	assert.Equal(t, "NEWMOBO", info.MoboSerial)
}

func TestPatcherLogging(t *testing.T) {
	logger := &mockLogger{}
	p := NewPatcher(WithLogger(logger))

	src := writeFakeImage(t, defaultFakeImage())
	dst := filepath.Join(t.TempDir(), "out.bin")

	_, err := p.Scan(src)
	require.NoError(t, err)
	require.NoError(t, p.ConvertEdition(src, EditionDigital, dst))
	require.NoError(t, p.ConvertEdition(dst, EditionDigital, ""))
	require.NoError(t, p.SetConsoleSerial(dst, "SN", ""))

	assert.Contains(t, logger.debugMsgs, "scanned image")
	assert.Contains(t, logger.debugMsgs, "copied image")
	assert.Contains(t, logger.infoMsgs, "converted edition")
	assert.Contains(t, logger.infoMsgs, "edition unchanged")
	assert.Contains(t, logger.infoMsgs, "wrote serial")
	assert.Empty(t, logger.errorMsgs)
}

func TestReplaceAll(t *testing.T) {
	tests := []struct {
		name  string
		buf   []byte
		find  []byte
		repl  []byte
		want  []byte
		count int
	}{
		{
			name:  "no match",
			buf:   []byte{1, 2, 3},
			find:  []byte{4, 5},
			repl:  []byte{9, 9},
			want:  []byte{1, 2, 3},
			count: 0,
		},
		{
			name:  "adjacent matches",
			buf:   []byte{1, 2, 1, 2, 3},
			find:  []byte{1, 2},
			repl:  []byte{7, 8},
			want:  []byte{7, 8, 7, 8, 3},
			count: 2,
		},
		{
			name:  "overlapping candidates are non-overlapping leftmost-first",
			buf:   []byte{1, 1, 1},
			find:  []byte{1, 1},
			repl:  []byte{2, 2},
			want:  []byte{2, 2, 1},
			count: 1,
		},
		{
			name:  "match at end",
			buf:   []byte{0, 0, 5, 6},
			find:  []byte{5, 6},
			repl:  []byte{1, 1},
			want:  []byte{0, 0, 1, 1},
			count: 1,
		},
		{
			name:  "buffer shorter than pattern",
			buf:   []byte{5},
			find:  []byte{5, 6},
			repl:  []byte{1, 1},
			want:  []byte{5},
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := append([]byte{}, tt.buf...)
			got := replaceAll(buf, tt.find, tt.repl)
			assert.Equal(t, tt.count, got)
			assert.Equal(t, tt.want, buf)
		})
	}
}

func TestSweepFlagsAbutting(t *testing.T) {
	blob := append(append(append([]byte{}, FlagDisc...), FlagSlim...), FlagDigital...)

	n := sweepFlags(blob, EditionDigital)
	assert.Equal(t, 2, n)
	assert.Equal(t, bytes.Repeat(FlagDigital, 3), blob)
}

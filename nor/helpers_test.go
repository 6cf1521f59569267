package nor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testImageSize is one byte larger than the minimum.
var testImageSize = MinImageSize + 1

type fakeImage struct {
	flagA   []byte
	flagB   []byte
	console string
	mobo    string
	model   string
	wifiMAC []byte
	lanMAC  []byte
	extra   map[int64][]byte
}

func defaultFakeImage() fakeImage {
	return fakeImage{
		flagA:   FlagDisc,
		flagB:   FlagDisc,
		console: "PS5TESTSERIAL123",
		mobo:    "MOBO123456789ABC",
		model:   "CFI-1016A",
		wifiMAC: []byte{0xA1, 0xB2, 0xC3, 0xD4, 0xE5, 0xF6},
		lanMAC:  []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
	}
}

// bytes renders the image over an erased (0xFF) background.
func (f fakeImage) bytes() []byte {
	buf := bytes.Repeat([]byte{PadErased}, int(testImageSize))
	put := func(off int64, data []byte) {
		copy(buf[off:], data)
	}
	put(EditionFlagOffsetA, f.flagA)
	put(EditionFlagOffsetB, f.flagB)
	put(ConsoleSerialOffset, []byte(f.console))
	put(MoboSerialOffset, []byte(f.mobo))
	put(ModelNumberOffset, []byte(f.model))
	put(WiFiMACOffset, f.wifiMAC)
	put(LANMACOffset, f.lanMAC)
	for off, data := range f.extra {
		put(off, data)
	}
	return buf
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeFakeImage(t *testing.T, f fakeImage) string {
	t.Helper()
	return writeTempFile(t, "nor.bin", f.bytes())
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// mockLogger records messages for assertions.
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *mockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *mockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *mockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

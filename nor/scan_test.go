package nor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())

	info, err := Scan(path)
	require.NoError(t, err)

	assert.Equal(t, EditionDisc, info.Edition)
	assert.Equal(t, "PS5TESTSERIAL123", info.ConsoleSerial)
	assert.Equal(t, "MOBO123456789ABC", info.MoboSerial)
	assert.Equal(t, "CFI-1016A", info.ModelNumber)
	assert.Equal(t, "A1B2C3D4E5F6", info.WiFiMAC)
	assert.Equal(t, "010203040506", info.LANMAC)
	assert.Equal(t, testImageSize, info.Size)
}

func TestScanMap(t *testing.T) {
	path := writeFakeImage(t, defaultFakeImage())

	info, err := Scan(path)
	require.NoError(t, err)

	m := info.Map()
	assert.Equal(t, map[string]string{
		"edition":        "disc",
		"console_serial": "PS5TESTSERIAL123",
		"mobo_serial":    "MOBO123456789ABC",
		"model_number":   "CFI-1016A",
		"wifi_mac":       "A1B2C3D4E5F6",
		"lan_mac":        "010203040506",
	}, m)

	assert.Len(t, Keys(), len(m))
	for _, k := range Keys() {
		assert.Contains(t, m, k)
	}
}

func TestScanUnknownEdition(t *testing.T) {
	f := defaultFakeImage()
	f.flagA = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	f.flagB = []byte{0x00, 0x00, 0x00, 0x00}
	path := writeFakeImage(t, f)

	info, err := Scan(path)
	require.NoError(t, err)
	assert.Equal(t, EditionUnknown, info.Edition)
	assert.Equal(t, "unknown", info.Map()[KeyEdition])
}

func TestScanTooSmall(t *testing.T) {
	tests := []struct {
		name string
		size int64
	}{
		{name: "empty", size: 0},
		{name: "shorter than LAN MAC end", size: LANMACOffset + MACLength - 1},
		{name: "one byte short of minimum", size: MinImageSize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "small.bin", make([]byte, tt.size))

			_, err := Scan(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrImageTooSmall)

			var small *ImageTooSmallError
			require.ErrorAs(t, err, &small)
			assert.Equal(t, tt.size, small.Size)
			assert.Equal(t, MinImageSize, small.Required)
		})
	}
}

func TestScanExactMinimum(t *testing.T) {
	data := defaultFakeImage().bytes()[:MinImageSize]
	path := writeTempFile(t, "exact.bin", data)

	info, err := Scan(path)
	require.NoError(t, err)
	assert.Equal(t, "A1B2C3D4E5F6", info.WiFiMAC)
}

func TestScanNotFound(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestMinImageSize(t *testing.T) {
	assert.Equal(t, int64(WiFiMACOffset+MACLength), MinImageSize)
	for _, f := range Fields() {
		assert.LessOrEqual(t, f.End(), MinImageSize, f.Name)
	}
}

func TestFieldsDoNotOverlap(t *testing.T) {
	fields := Fields()
	for i := 1; i < len(fields); i++ {
		assert.LessOrEqual(t, fields[i-1].End(), fields[i].Offset,
			"%s overlaps %s", fields[i-1].Name, fields[i].Name)
	}
}

func TestFieldKinds(t *testing.T) {
	tests := []struct {
		field Field
		want  DecodeKind
	}{
		{FieldEditionA, KindEdition},
		{FieldEditionB, KindEdition},
		{FieldMoboSerial, KindASCII},
		{FieldConsoleSerial, KindASCII},
		{FieldModelNumber, KindASCII},
		{FieldWiFiMAC, KindHex},
		{FieldLANMAC, KindHex},
	}

	for _, tt := range tests {
		t.Run(tt.field.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Kind)
		})
	}

	assert.Equal(t, "edition", KindEdition.String())
	assert.Equal(t, "ascii", KindASCII.String())
	assert.Equal(t, "hex", KindHex.String())
	assert.Equal(t, "unknown", DecodeKind(99).String())
}

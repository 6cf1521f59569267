package nor

// Absolute offsets of the known fields.
const (
	// EditionFlagOffsetA is the primary edition flag
	EditionFlagOffsetA = 0x1C7010

	// EditionFlagOffsetB is the secondary edition flag
	EditionFlagOffsetB = 0x1C7030

	// MoboSerialOffset is the motherboard serial number
	MoboSerialOffset = 0x1C7200

	// ConsoleSerialOffset is the console serial number
	ConsoleSerialOffset = 0x1C7210

	// ModelNumberOffset is the model string (CFI-XXXXxx)
	ModelNumberOffset = 0x1C7226

	// WiFiMACOffset is the Wi-Fi MAC address
	WiFiMACOffset = 0x1C73C0

	// LANMACOffset is the LAN MAC address
	LANMACOffset = 0x1C4020
)

// Field lengths in bytes.
const (
	EditionFlagLength   = 4
	MoboSerialLength    = 16
	ConsoleSerialLength = 17
	ModelNumberLength   = 19
	MACLength           = 6
)

// DecodeKind selects how the bytes of a field are interpreted.
type DecodeKind int

const (
	// KindEdition is an exact match against the known edition flags
	KindEdition DecodeKind = iota

	// KindASCII is a padded single-byte string
	KindASCII

	// KindHex is rendered as uppercase hex without separators
	KindHex
)

func (k DecodeKind) String() string {
	switch k {
	case KindEdition:
		return "edition"
	case KindASCII:
		return "ascii"
	case KindHex:
		return "hex"
	default:
		return "unknown"
	}
}

// Field describes one byte range of the image.
type Field struct {
	// Name is the field key, as used in Info.Map
	Name string

	// Offset is the absolute byte address of the field
	Offset int64

	// Length is the field size in bytes
	Length int

	// Kind is how the field is decoded
	Kind DecodeKind
}

// End returns the offset one past the last byte of the field.
func (f Field) End() int64 {
	return f.Offset + int64(f.Length)
}

// The known fields. The two edition flags are independent copies of the
// same logical value.
var (
	FieldEditionA      = Field{Name: "edition_flag_a", Offset: EditionFlagOffsetA, Length: EditionFlagLength, Kind: KindEdition}
	FieldEditionB      = Field{Name: "edition_flag_b", Offset: EditionFlagOffsetB, Length: EditionFlagLength, Kind: KindEdition}
	FieldMoboSerial    = Field{Name: "mobo_serial", Offset: MoboSerialOffset, Length: MoboSerialLength, Kind: KindASCII}
	FieldConsoleSerial = Field{Name: "console_serial", Offset: ConsoleSerialOffset, Length: ConsoleSerialLength, Kind: KindASCII}
	FieldModelNumber   = Field{Name: "model_number", Offset: ModelNumberOffset, Length: ModelNumberLength, Kind: KindASCII}
	FieldWiFiMAC       = Field{Name: "wifi_mac", Offset: WiFiMACOffset, Length: MACLength, Kind: KindHex}
	FieldLANMAC        = Field{Name: "lan_mac", Offset: LANMACOffset, Length: MACLength, Kind: KindHex}
)

// Fields returns the field table in offset order.
func Fields() []Field {
	return []Field{
		FieldLANMAC,
		FieldEditionA,
		FieldEditionB,
		FieldMoboSerial,
		FieldConsoleSerial,
		FieldModelNumber,
		FieldWiFiMAC,
	}
}

// MinImageSize is the smallest image that contains every known field.
var MinImageSize = minImageSize()

func minImageSize() int64 {
	var end int64
	for _, f := range Fields() {
		if f.End() > end {
			end = f.End()
		}
	}
	return end
}

package nor

// Keys of Info.Map.
const (
	KeyEdition       = "edition"
	KeyConsoleSerial = "console_serial"
	KeyMoboSerial    = "mobo_serial"
	KeyModelNumber   = "model_number"
	KeyWiFiMAC       = "wifi_mac"
	KeyLANMAC        = "lan_mac"
)

// Info is a read-only snapshot of the metadata held by an image.
type Info struct {
	Edition       Edition
	ConsoleSerial string
	MoboSerial    string
	ModelNumber   string

	// WiFiMAC and LANMAC are 12 uppercase hex characters
	WiFiMAC string
	LANMAC  string

	// Size is the image size in bytes
	Size int64
}

// Map returns the metadata keyed by field name. The edition is rendered by
// name ("slim", "disc", "digital" or "unknown").
func (i *Info) Map() map[string]string {
	return map[string]string{
		KeyEdition:       i.Edition.String(),
		KeyConsoleSerial: i.ConsoleSerial,
		KeyMoboSerial:    i.MoboSerial,
		KeyModelNumber:   i.ModelNumber,
		KeyWiFiMAC:       i.WiFiMAC,
		KeyLANMAC:        i.LANMAC,
	}
}

// Keys returns the Map keys in display order.
func Keys() []string {
	return []string{KeyEdition, KeyConsoleSerial, KeyMoboSerial, KeyModelNumber, KeyWiFiMAC, KeyLANMAC}
}

// Scan opens the image at path read-only and decodes every known field.
func Scan(path string) (*Info, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = img.Close() }()

	return ScanImage(img)
}

// ScanImage decodes every known field of an open image.
func ScanImage(img *Image) (*Info, error) {
	if err := img.CheckSize(); err != nil {
		return nil, err
	}

	edition, err := DetectEdition(img)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Edition: edition,
		Size:    img.Size(),
	}

	fields := []struct {
		field Field
		dst   *string
	}{
		{FieldConsoleSerial, &info.ConsoleSerial},
		{FieldMoboSerial, &info.MoboSerial},
		{FieldModelNumber, &info.ModelNumber},
		{FieldWiFiMAC, &info.WiFiMAC},
		{FieldLANMAC, &info.LANMAC},
	}
	for _, t := range fields {
		raw, err := img.ReadField(t.field)
		if err != nil {
			return nil, err
		}
		if t.field.Kind == KindHex {
			*t.dst = DecodeHex(raw)
		} else {
			*t.dst = DecodeASCII(raw)
		}
	}

	return info, nil
}

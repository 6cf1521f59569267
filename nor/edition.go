package nor

import (
	"bytes"
	"strings"
)

// Edition is the console edition declared by the image flags.
type Edition int

const (
	// EditionUnknown means neither flag offset holds a known pattern
	EditionUnknown Edition = iota
	EditionSlim
	EditionDisc
	EditionDigital
)

// Flag patterns as stored in the image.
var (
	FlagSlim    = []byte{0x22, 0x01, 0x01, 0x01}
	FlagDisc    = []byte{0x22, 0x02, 0x01, 0x01}
	FlagDigital = []byte{0x22, 0x03, 0x01, 0x01}
)

// Editions lists the known editions in sweep order.
func Editions() []Edition {
	return []Edition{EditionSlim, EditionDisc, EditionDigital}
}

func (e Edition) String() string {
	switch e {
	case EditionSlim:
		return "slim"
	case EditionDisc:
		return "disc"
	case EditionDigital:
		return "digital"
	default:
		return "unknown"
	}
}

// Flag returns the 4-byte pattern of the edition, or nil for EditionUnknown.
func (e Edition) Flag() []byte {
	switch e {
	case EditionSlim:
		return FlagSlim
	case EditionDisc:
		return FlagDisc
	case EditionDigital:
		return FlagDigital
	default:
		return nil
	}
}

// ParseEdition maps a case-insensitive name to an Edition.
// "unknown" is not accepted: it is a classification, not a target.
func ParseEdition(name string) (Edition, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "slim":
		return EditionSlim, nil
	case "disc":
		return EditionDisc, nil
	case "digital":
		return EditionDigital, nil
	default:
		return EditionUnknown, &InvalidEditionError{Name: name}
	}
}

// MatchFlag classifies a raw flag value.
func MatchFlag(flag []byte) Edition {
	// Digital first, then disc, then slim.
	for _, e := range []Edition{EditionDigital, EditionDisc, EditionSlim} {
		if bytes.Equal(flag, e.Flag()) {
			return e
		}
	}
	return EditionUnknown
}

// DetectEdition reads the two flag offsets and returns the first known
// edition found. The primary offset wins when the two disagree.
func DetectEdition(img *Image) (Edition, error) {
	for _, f := range []Field{FieldEditionA, FieldEditionB} {
		flag, err := img.ReadField(f)
		if err != nil {
			return EditionUnknown, err
		}
		if e := MatchFlag(flag); e != EditionUnknown {
			return e, nil
		}
	}
	return EditionUnknown, nil
}

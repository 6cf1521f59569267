// Package nor reads and patches PS5 NOR flash dumps.
//
// # Image Layout
//
// A NOR dump is an opaque binary blob. This package never parses it; it only
// interprets a fixed set of absolute byte ranges (see Fields):
//
//	0x1C7010  4   edition flag A      exact-match enum
//	0x1C7030  4   edition flag B      exact-match enum
//	0x1C7200  16  motherboard serial  padded ASCII
//	0x1C7210  17  console serial      padded ASCII
//	0x1C7226  19  model number        padded ASCII
//	0x1C73C0  6   Wi-Fi MAC           hex
//	0x1C4020  6   LAN MAC             hex
//
// Edition flags are 4-byte patterns:
//
//	Slim     22 01 01 01
//	Disc     22 02 01 01
//	Digital  22 03 01 01
//
// String fields hold their value up to the first padding byte. Padding is
// 0x00 or 0xFF (erased NOR).
//
// # Usage
//
// Read the metadata of a dump:
//
//	info, err := nor.Scan("dump.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.Edition, info.ConsoleSerial, info.WiFiMAC)
//
// Convert a copy of a dump to the digital edition:
//
//	p := nor.NewPatcher(nor.WithLogger(myLogger))
//	err := p.ConvertEdition("dump.bin", nor.EditionDigital, "digital.bin")
//
// An empty destination edits the source in place. When the destination
// differs from the source, the source is copied first and never modified.
//
// # Error Handling
//
// Errors can be matched with errors.Is against ErrImageNotFound,
// ErrImageTooSmall, ErrOutOfRange, ErrNotWritable, ErrInvalidArgument and
// ErrValueTooLong. Invalid arguments are always rejected before any file is
// opened or copied.
//
// Callers are responsible for serialising concurrent operations on the same
// path; the package does no file locking.
package nor

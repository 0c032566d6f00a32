package section

// Signature opens and closes every POD5 file ("\x8bPOD\r\n\x1a\n").
var Signature = [SignatureSize]byte{0x8B, 0x50, 0x4F, 0x44, 0x0D, 0x0A, 0x1A, 0x0A}

// FooterMagic immediately precedes the footer body.
var FooterMagic = [FooterMagicSize]byte{'F', 'O', 'O', 'T', 'E', 'R', 0x00, 0x00}

// sizes in bytes of the fixed parts of the file layout
const (
	SignatureSize   = 8  // leading and trailing file signature
	MarkerSize      = 16 // section marker written after every section
	FooterMagicSize = 8  // "FOOTER\0\0"
	LengthFieldSize = 8  // little-endian int64 footer length
	Alignment       = 8  // every section payload is padded to this boundary

	// HeaderSize is the signature followed by the section marker.
	HeaderSize = SignatureSize + MarkerSize
	// TrailerSize is the footer length, the marker and the signature at the end of the file.
	TrailerSize = LengthFieldSize + MarkerSize + SignatureSize
	// MinFileSize is a header, the footer magic, an empty-but-marked footer and the trailer.
	MinFileSize = HeaderSize + FooterMagicSize + MarkerSize + TrailerSize
)

// Padding returns the number of zero bytes needed to move pos to the next
// Alignment boundary.
func Padding(pos int64) int64 {
	return (Alignment - pos%Alignment) % Alignment
}

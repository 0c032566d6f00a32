// Package section implements the physical layout of a POD5 file: the header,
// the padded and marker-delimited sections that hold embedded tables, and the
// trailer that lets a reader find the footer from the end of the file.
//
// # File Layout
//
// All integers are little-endian.
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Signature (8 bytes)        8B 50 4F 44 0D 0A 1A 0A      │
//	│ Section marker (16 bytes)  random, fixed per session    │
//	├─────────────────────────────────────────────────────────┤
//	│ Table payload (variable)   Arrow IPC file               │
//	│ Padding (0-7 bytes)        zeros, to 8-byte boundary    │
//	│ Section marker (16 bytes)                               │
//	├─────────────────────────────────────────────────────────┤
//	│ ... one block per embedded table ...                    │
//	├─────────────────────────────────────────────────────────┤
//	│ Footer magic (8 bytes)     "FOOTER\0\0"                 │
//	│ Footer body (variable)     FlatBuffer                   │
//	│ Padding (0-7 bytes)                                     │
//	│ Section marker (16 bytes)                               │
//	├─────────────────────────────────────────────────────────┤
//	│ Footer length (8 bytes)    body + padding + marker      │
//	│ Section marker (16 bytes)                               │
//	│ Signature (8 bytes)                                     │
//	└─────────────────────────────────────────────────────────┘
//
// # Writing
//
// A Writer owns the cursor of an io.WriteSeeker for one session:
//
//	marker, _ := section.NewMarker()
//	w := section.NewWriter(file, marker)
//	_ = w.WriteHeader()
//	span, _ := w.WriteSection(tablePayload) // span.Offset, span.Length
//	_, _ = w.WriteFooter(footerBody)
//
// Span always describes the un-padded payload, so reading span.Length bytes at
// span.Offset returns exactly the bytes that were passed in.
//
// # Reading
//
// Reading needs only an io.ReaderAt and the file size, and keeps no state, so
// any number of goroutines may read one sealed file:
//
//	body, trailer, err := section.ReadFooter(file, size)
//
// ReadTrailer reads the last 32 bytes, takes the footer length L, and expects
// the footer body to start L bytes before the length field, directly after
// the footer magic.
package section

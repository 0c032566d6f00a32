// Package table adapts Apache Arrow IPC files as the columnar table codec for
// POD5's three embedded tables: reads, run info and signal.
//
// Each table has a fixed schema stamped with the writing session's file
// identifier, producing software and format version. Encoders turn Go rows
// into one Arrow IPC file written to an io.Writer; decoders read an IPC file
// from any ipc.ReadAtSeeker back into Go rows. A decoder given an
// io.SectionReader over an embedded table never reads outside that span.
//
// # Categorical Columns
//
// The reads table stores pore_type, end_reason and run_info as
// dictionary<int16, utf8> columns. The three columns share one dictionary
// value set built by package dictionary; see that package for the rationale.
//
// # Signal Storage
//
// Signal rows hold at most signal.MaxSignal samples. By default samples are a
// large_list<int16> column. When the schema is built with a compression type
// other than format.CompressionNone, the column is large_binary holding the
// compressed little-endian samples and the field records the codec in its
// metadata, so decoders pick the right path from the file alone.
package table

// Package errs defines the sentinel errors returned by podders packages.
//
// Errors are grouped by the caller's likely reaction: format errors mean the
// input is not a readable POD5 file, limit errors mean an encoding bound was
// exceeded, and contract errors mean a writer session was driven out of order.
// I/O failures are never mapped onto these sentinels; they are wrapped with
// context and keep their original identity.
//
// All errors are meant to be matched with errors.Is.
package errs

import "errors"

// Format errors.
var (
	ErrInvalidSignature      = errors.New("podders: invalid file signature")
	ErrInvalidTrailer        = errors.New("podders: invalid file trailer")
	ErrInvalidFooter         = errors.New("podders: invalid footer")
	ErrUnsupportedFormat     = errors.New("podders: unsupported embedded table format")
	ErrContentNotFound       = errors.New("podders: content type not present in footer")
	ErrInvalidTable          = errors.New("podders: invalid embedded table")
	ErrSignalIndexOutOfRange = errors.New("podders: signal index out of range")
	ErrSignalMismatch        = errors.New("podders: signal row does not belong to read")
	ErrInvalidEndReason      = errors.New("podders: invalid end reason")
	ErrInvalidCompression    = errors.New("podders: invalid signal compression")
)

// Limit errors.
var (
	ErrDictionaryOverflow  = errors.New("podders: dictionary value count exceeds index range")
	ErrSampleCountMismatch = errors.New("podders: num_samples does not match signal length")
)

// Contract errors raised by the writer session state machine.
var (
	ErrSessionSealed       = errors.New("podders: session already sealed by footer")
	ErrSessionFailed       = errors.New("podders: session failed on a previous write")
	ErrTableAlreadyWritten = errors.New("podders: table already written")
	ErrReadsNotWritten     = errors.New("podders: signal table requires the reads table first")
	ErrTablesPending       = errors.New("podders: footer requires all tables written")
)

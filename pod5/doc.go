// Package pod5 writes and reads POD5 files.
//
// A Writer is one write session. It emits the file header on creation,
// buffers reads and run info rows in memory, writes each embedded table
// exactly once and seals the file with the footer:
//
//	w, err := pod5.Create("reads.pod5", pod5.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	err = w.PushRunInfo(runInfo)
//	err = w.PushRead(read)
//	err = w.WriteRunInfoTable()
//	err = w.WriteReadsTable()
//	err = w.WriteSignalTable()
//	err = w.WriteFooter()
//
// Calls made out of order are rejected with one of the contract errors of
// package errs and leave the file untouched. Close writes whatever tables are
// still pending followed by the footer, so a session may also be finished by
// pushing rows and calling Close alone.
//
// A Reader opens a finished file. It validates the header, the trailer and
// the footer once, then serves every table through an io.SectionReader over
// exactly that table's bytes. A Reader holds no mutable state and is safe for
// concurrent use.
package pod5

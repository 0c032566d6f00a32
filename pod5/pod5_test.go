package pod5

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/footer"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/internal/hash"
	"github.com/Adoni5/podders/section"
	"github.com/Adoni5/podders/table"
)

func scenarioSignal(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i % 32768)
	}

	return samples
}

func testRunInfo(id string) table.RunInfo {
	return table.RunInfo{
		AcquisitionID:        id,
		AcquisitionStartTime: time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		AdcMax:               2047,
		AdcMin:               -2048,
		ContextTags:          map[string]string{"basecall_config_filename": "dna_r10.4.1_e8.2_400bps_hac.cfg"},
		FlowCellID:           "PAO12345",
		SampleRate:           5000,
		SequencingKit:        "SQK-LSK114",
		Software:             "MinKNOW",
		TrackingID:           map[string]string{"run_id": id},
	}
}

func testRead(n byte, samples []int16, runInfo string) table.Read {
	return table.Read{
		ReadID:           uuid.UUID{15: n},
		Signal:           samples,
		Channel:          uint16(n) + 100,
		Well:             1,
		PoreType:         table.PoreTypeR1041,
		CalibrationScale: 0.15,
		ReadNumber:       uint32(n),
		Start:            uint64(n) * 1000,
		EndReason:        table.EndReasonSignalPositive,
		RunInfo:          runInfo,
	}
}

type session struct {
	runInfos []table.RunInfo
	reads    []table.Read
}

func testSession() session {
	return session{
		runInfos: []table.RunInfo{testRunInfo("acq-1"), testRunInfo("acq-2")},
		reads: []table.Read{
			testRead(1, scenarioSignal(45000), "acq-1"),
			testRead(2, nil, "acq-1"),
			testRead(3, scenarioSignal(7), "acq-2"),
		},
	}
}

func writeSession(t *testing.T, path string, s session, opts ...WriterOption) *Writer {
	t.Helper()

	w, err := Create(path, opts...)
	require.NoError(t, err)

	for _, info := range s.runInfos {
		require.NoError(t, w.PushRunInfo(info))
	}
	for _, read := range s.reads {
		require.NoError(t, w.PushRead(read))
	}

	require.NoError(t, w.WriteRunInfoTable())
	require.NoError(t, w.WriteReadsTable())
	require.NoError(t, w.WriteSignalTable())
	require.NoError(t, w.WriteFooter())
	require.NoError(t, w.Close())

	return w
}

func openReader(t *testing.T, path string) *Reader {
	t.Helper()

	rd, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rd.Close() })

	return rd
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pod5")
	s := testSession()
	w := writeSession(t, path, s)

	rd := openReader(t, path)
	require.Equal(t, w.FileIdentifier(), rd.Footer().FileIdentifier)
	require.Equal(t, DefaultSoftware, rd.Footer().Software)
	require.Equal(t, Pod5Version, rd.Footer().Pod5Version)

	reads, err := rd.Reads()
	require.NoError(t, err)
	require.Len(t, reads, 3)

	rows, err := rd.SignalRows()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	wantIndex := [][]uint64{{0, 1, 2}, {3}, {4}}
	for i, read := range reads {
		want := s.reads[i]
		require.Equal(t, want.ReadID, read.ReadID)
		require.Equal(t, wantIndex[i], read.SignalIndex)
		require.Equal(t, uint64(len(want.Signal)), read.NumSamples)
		require.Equal(t, want.Channel, read.Channel)
		require.Equal(t, want.PoreType, read.PoreType)
		require.Equal(t, want.EndReason, read.EndReason)
		require.Equal(t, want.RunInfo, read.RunInfo)

		samples, err := rd.ReadSignal(read, rows)
		require.NoError(t, err)
		require.Len(t, samples, len(want.Signal))
		if len(want.Signal) > 0 {
			require.Equal(t, want.Signal, samples)
		}
	}

	require.Equal(t, uint32(20000), rows[0].NumSamples)
	require.Equal(t, uint32(20000), rows[1].NumSamples)
	require.Equal(t, uint32(5000), rows[2].NumSamples)
	require.Equal(t, uint32(0), rows[3].NumSamples)

	infos, err := rd.RunInfos()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "acq-2", infos[1].AcquisitionID)
	require.True(t, s.runInfos[0].AcquisitionStartTime.Equal(infos[0].AcquisitionStartTime))
	require.Equal(t, s.runInfos[1].TrackingID, infos[1].TrackingID)
}

func TestLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pod5")
	writeSession(t, path, testSession())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	size := int64(len(data))
	require.Zero(t, size%section.Alignment)
	require.Equal(t, section.Signature[:], data[:section.SignatureSize])
	require.Equal(t, section.Signature[:], data[size-section.SignatureSize:])

	marker := data[section.SignatureSize:section.HeaderSize]
	require.Equal(t, marker, data[size-section.SignatureSize-section.MarkerSize:size-section.SignatureSize])

	rd := openReader(t, path)
	contents := rd.Footer().Contents
	require.Len(t, contents, 3)
	require.Equal(t, format.ContentReadsTable, contents[0].ContentType)
	require.Equal(t, format.ContentRunInfoTable, contents[1].ContentType)
	require.Equal(t, format.ContentSignalTable, contents[2].ContentType)

	for _, ef := range contents {
		require.Zero(t, ef.Offset%section.Alignment, ef.ContentType.String())
		require.Equal(t, format.FormatFeatherV2, ef.Format)

		end := ef.Offset + ef.Length
		pad := section.Padding(end)
		require.Equal(t, make([]byte, pad), data[end:end+pad])
		require.Equal(t, marker, data[end+pad:end+pad+section.MarkerSize])

		// every table is a complete Arrow IPC file on its own
		require.Equal(t, []byte("ARROW1"), data[ef.Offset:ef.Offset+6])
		require.Equal(t, []byte("ARROW1"), data[end-6:end])
	}

	// tables are laid out back to back in run info, reads, signal order
	require.Equal(t, int64(section.HeaderSize), contents[1].Offset)
	runInfoEnd := contents[1].Offset + contents[1].Length
	require.Equal(t, runInfoEnd+section.Padding(runInfoEnd)+section.MarkerSize, contents[0].Offset)
}

func TestLocateTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locate.pod5")
	writeSession(t, path, testSession())

	for _, kind := range []format.ContentType{
		format.ContentReadsTable,
		format.ContentRunInfoTable,
		format.ContentSignalTable,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			ef, err := LocateTable(path, kind)
			require.NoError(t, err)
			require.Equal(t, kind, ef.ContentType)
			require.Positive(t, ef.Length)

			raw, err := ReadBytes(path, ef.Offset, ef.Length)
			require.NoError(t, err)
			require.Len(t, raw, int(ef.Length))

			rd := openReader(t, path)
			tableBytes, err := rd.TableBytes(kind)
			require.NoError(t, err)
			require.Equal(t, raw, tableBytes)

			sum, err := rd.Checksum(kind)
			require.NoError(t, err)
			require.Equal(t, hash.Sum(raw), sum)
		})
	}

	for _, kind := range []format.ContentType{format.ContentReadIDIndex, format.ContentOtherIndex} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := LocateTable(path, kind)
			require.ErrorIs(t, err, errs.ErrContentNotFound)
		})
	}
}

func TestReadBytes_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	got, err := ReadBytes(path, 2, 3)
	require.NoError(t, err)
	require.Equal(t, []byte("234"), got)

	_, err = ReadBytes(path, 8, 5)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadBytes(path, 2, math.MaxInt64)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadBytes(path, 11, 0)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	got, err = ReadBytes(path, 10, 0)
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = ReadBytes(path, -1, 2)
	require.Error(t, err)

	_, err = ReadBytes(filepath.Join(t.TempDir(), "missing"), 0, 1)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pod5")

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rd := openReader(t, path)
	require.Len(t, rd.Footer().Contents, 3)

	contents, err := rd.ReadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, contents.Reads)
	require.Empty(t, contents.RunInfos)
	require.Empty(t, contents.Signal)
}

func TestCloseWritesPendingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.pod5")
	s := testSession()

	w, err := Create(path)
	require.NoError(t, err)
	for _, read := range s.reads {
		require.NoError(t, w.PushRead(read))
	}
	require.NoError(t, w.PushRunInfo(s.runInfos[0]))
	require.NoError(t, w.WriteReadsTable())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	rd := openReader(t, path)
	contents, err := rd.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents.Reads, 3)
	require.Len(t, contents.RunInfos, 1)
	require.Len(t, contents.Signal, 5)

	// the reads table was written first, before Close added the others
	reads, err := rd.Locate(format.ContentReadsTable)
	require.NoError(t, err)
	require.Equal(t, int64(section.HeaderSize), reads.Offset)
}

func TestSignalCompression(t *testing.T) {
	for _, compression := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(compression.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "compressed.pod5")
			s := testSession()
			writeSession(t, path, s, WithSignalCompression(compression), WithSignalBatchRows(2))

			rd := openReader(t, path)
			contents, err := rd.ReadAll(context.Background())
			require.NoError(t, err)
			require.Len(t, contents.Signal, 5)

			samples, err := rd.ReadSignal(contents.Reads[0], contents.Signal)
			require.NoError(t, err)
			require.Equal(t, s.reads[0].Signal, samples)
		})
	}
}

func TestWriterOptions(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "identity.pod5")
		id := uuid.MustParse("7a3c2d1e-0f9b-4c8a-b6d5-e4f3a2b1c0d9")
		writeSession(t, path, testSession(), WithFileIdentifier(id), WithSoftware("podders-test"))

		rd := openReader(t, path)
		require.Equal(t, id, rd.Footer().FileIdentifier)
		require.Equal(t, "podders-test", rd.Footer().Software)
	})

	t.Run("invalid", func(t *testing.T) {
		dir := t.TempDir()

		_, err := Create(filepath.Join(dir, "a.pod5"), WithSignalCompression(format.CompressionType(9)))
		require.ErrorIs(t, err, errs.ErrInvalidCompression)

		_, err = Create(filepath.Join(dir, "b.pod5"), WithSignalBatchRows(0))
		require.Error(t, err)

		_, err = Create(filepath.Join(dir, "c.pod5"), WithFileIdentifier(uuid.Nil))
		require.Error(t, err)

		_, err = Create(filepath.Join(dir, "d.pod5"), WithSoftware(""))
		require.Error(t, err)
	})

	t.Run("logger", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		path := filepath.Join(t.TempDir(), "logged.pod5")
		writeSession(t, path, testSession(), WithLogger(zap.New(core)))

		require.Equal(t, 3, logs.FilterMessage("table written").Len())
		require.Equal(t, 1, logs.FilterMessage("footer written").Len())
	})
}

func TestWriterContract(t *testing.T) {
	newWriter := func(t *testing.T) *Writer {
		t.Helper()

		w, err := Create(filepath.Join(t.TempDir(), "contract.pod5"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = w.Close() })

		return w
	}

	t.Run("signal before reads", func(t *testing.T) {
		w := newWriter(t)
		require.ErrorIs(t, w.WriteSignalTable(), errs.ErrReadsNotWritten)
	})

	t.Run("table twice", func(t *testing.T) {
		w := newWriter(t)
		require.NoError(t, w.WriteReadsTable())
		require.ErrorIs(t, w.WriteReadsTable(), errs.ErrTableAlreadyWritten)
		require.NoError(t, w.WriteRunInfoTable())
		require.ErrorIs(t, w.WriteRunInfoTable(), errs.ErrTableAlreadyWritten)
	})

	t.Run("push after table", func(t *testing.T) {
		w := newWriter(t)
		require.NoError(t, w.WriteReadsTable())
		require.NoError(t, w.WriteRunInfoTable())
		require.ErrorIs(t, w.PushRead(testRead(1, nil, "acq")), errs.ErrTableAlreadyWritten)
		require.ErrorIs(t, w.PushRunInfo(testRunInfo("acq")), errs.ErrTableAlreadyWritten)
	})

	t.Run("footer before tables", func(t *testing.T) {
		w := newWriter(t)
		require.NoError(t, w.WriteRunInfoTable())
		require.ErrorIs(t, w.WriteFooter(), errs.ErrTablesPending)
	})

	t.Run("after footer", func(t *testing.T) {
		w := newWriter(t)
		require.NoError(t, w.WriteRunInfoTable())
		require.NoError(t, w.WriteReadsTable())
		require.NoError(t, w.WriteSignalTable())
		require.NoError(t, w.WriteFooter())

		require.ErrorIs(t, w.WriteFooter(), errs.ErrSessionSealed)
		require.ErrorIs(t, w.PushRead(testRead(1, nil, "acq")), errs.ErrSessionSealed)
		require.ErrorIs(t, w.PushRunInfo(testRunInfo("acq")), errs.ErrSessionSealed)
	})

	t.Run("sample count mismatch", func(t *testing.T) {
		w := newWriter(t)
		read := testRead(1, scenarioSignal(10), "acq")
		read.NumSamples = 11
		require.ErrorIs(t, w.PushRead(read), errs.ErrSampleCountMismatch)

		read.NumSamples = 10
		require.NoError(t, w.PushRead(read))
	})

	t.Run("pushed samples are copied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "copy.pod5")
		w, err := Create(path)
		require.NoError(t, err)

		samples := scenarioSignal(4)
		require.NoError(t, w.PushRead(testRead(1, samples, "acq")))
		samples[0] = -1
		require.NoError(t, w.Close())

		rd := openReader(t, path)
		contents, err := rd.ReadAll(context.Background())
		require.NoError(t, err)
		require.Equal(t, int16(0), contents.Signal[0].Samples[0])
	})
}

// failingFile fails every write once armed.
type failingFile struct {
	*os.File
	armed bool
}

var errDiskFull = errors.New("disk full")

func (f *failingFile) Write(p []byte) (int, error) {
	if f.armed {
		return 0, errDiskFull
	}

	return f.File.Write(p)
}

func TestWriterFailure(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "failing.pod5"))
	require.NoError(t, err)
	defer f.Close()

	ff := &failingFile{File: f}
	w, err := NewWriter(ff)
	require.NoError(t, err)

	require.NoError(t, w.PushRead(testRead(1, scenarioSignal(10), "acq")))
	ff.armed = true

	err = w.WriteReadsTable()
	require.ErrorIs(t, err, errDiskFull)

	ff.armed = false
	require.ErrorIs(t, w.WriteRunInfoTable(), errs.ErrSessionFailed)
	require.ErrorIs(t, w.WriteFooter(), errs.ErrSessionFailed)

	err = w.Close()
	require.ErrorIs(t, err, errs.ErrSessionFailed)
	require.ErrorIs(t, err, errDiskFull)
}

func TestDictionaryOverflow(t *testing.T) {
	w, err := Create(filepath.Join(t.TempDir(), "overflow.pod5"))
	require.NoError(t, err)
	defer w.Close()

	for i := range 32768 {
		read := table.Read{ReadID: uuid.New(), RunInfo: uuid.NewString()}
		if i == 0 {
			read.PoreType = table.PoreTypeR941
		}
		require.NoError(t, w.PushRead(read))
	}

	err = w.WriteReadsTable()
	require.ErrorIs(t, err, errs.ErrDictionaryOverflow)

	// encoding failures leave the session usable
	require.NoError(t, w.WriteRunInfoTable())
}

func TestPushRead_InvalidEndReason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "end_reason.pod5")
	s := testSession()

	w, err := Create(path)
	require.NoError(t, err)

	bad := testRead(9, scenarioSignal(10), "acq-1")
	bad.EndReason = table.EndReason(9)
	require.ErrorIs(t, w.PushRead(bad), errs.ErrInvalidEndReason)

	for _, info := range s.runInfos {
		require.NoError(t, w.PushRunInfo(info))
	}
	for _, read := range s.reads {
		require.NoError(t, w.PushRead(read))
	}
	require.NoError(t, w.Close())

	reads, err := openReader(t, path).Reads()
	require.NoError(t, err)
	require.Len(t, reads, len(s.reads))
	for _, read := range reads {
		require.NotEqual(t, bad.ReadID, read.ReadID)
	}
}

// writeRawFile lays out a sealed file whose footer lists contents verbatim.
func writeRawFile(t *testing.T, path string, contents ...footer.EmbeddedFile) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	marker, err := section.NewMarker()
	require.NoError(t, err)

	sw := section.NewWriter(f, marker)
	require.NoError(t, sw.WriteHeader())
	_, err = sw.WriteSection([]byte("not an arrow table"))
	require.NoError(t, err)

	body := footer.New(uuid.New(), DefaultSoftware, Pod5Version, contents...).Bytes()
	_, err = sw.WriteFooter(body)
	require.NoError(t, err)
}

func TestLocate_CorruptFooter(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		entry footer.EmbeddedFile
	}{
		{"Length overflows offset", footer.EmbeddedFile{Offset: section.HeaderSize, Length: math.MaxInt64}},
		{"Length past footer", footer.EmbeddedFile{Offset: section.HeaderSize, Length: 1 << 20}},
		{"Offset past footer", footer.EmbeddedFile{Offset: math.MaxInt64 - 1, Length: 1}},
		{"Offset inside header", footer.EmbeddedFile{Offset: 8, Length: 4}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("corrupt-%d.pod5", i))
			tt.entry.Format = format.FormatFeatherV2
			tt.entry.ContentType = format.ContentReadsTable
			writeRawFile(t, path, tt.entry)

			rd := openReader(t, path)

			_, err := rd.Locate(format.ContentReadsTable)
			require.ErrorIs(t, err, errs.ErrInvalidFooter)

			_, err = rd.TableBytes(format.ContentReadsTable)
			require.ErrorIs(t, err, errs.ErrInvalidFooter)

			_, err = rd.Reads()
			require.ErrorIs(t, err, errs.ErrInvalidFooter)
		})
	}

	t.Run("Valid span", func(t *testing.T) {
		path := filepath.Join(dir, "valid.pod5")
		writeRawFile(t, path, footer.EmbeddedFile{
			Offset:      section.HeaderSize,
			Length:      int64(len("not an arrow table")),
			Format:      format.FormatFeatherV2,
			ContentType: format.ContentReadsTable,
		})

		got, err := openReader(t, path).TableBytes(format.ContentReadsTable)
		require.NoError(t, err)
		require.Equal(t, []byte("not an arrow table"), got)
	})
}

func TestOpen_Invalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "nope.pod5"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not pod5", func(t *testing.T) {
		path := filepath.Join(dir, "text.pod5")
		require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("not a pod5 file "), 10), 0o600))

		_, err := Open(path)
		require.ErrorIs(t, err, errs.ErrInvalidSignature)
	})

	t.Run("truncated", func(t *testing.T) {
		path := filepath.Join(dir, "full.pod5")
		writeSession(t, path, testSession())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		cut := filepath.Join(dir, "cut.pod5")
		require.NoError(t, os.WriteFile(cut, data[:len(data)-10], 0o600))

		_, err = Open(cut)
		require.ErrorIs(t, err, errs.ErrInvalidSignature)
	})

	t.Run("marker mismatch", func(t *testing.T) {
		path := filepath.Join(dir, "marker.pod5")
		writeSession(t, path, testSession())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[section.SignatureSize] ^= 0xFF

		_, err = NewReader(bytes.NewReader(data), int64(len(data)))
		require.ErrorIs(t, err, errs.ErrInvalidTrailer)
	})
}

func TestReadAll_Canceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cancel.pod5")
	writeSession(t, path, testSession())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := openReader(t, path).ReadAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewWriter_InMemoryReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.pod5")
	writeSession(t, path, testSession())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rd, err := NewReader(bytes.NewReader(data), int64(len(data)), WithReaderLogger(zap.NewNop()))
	require.NoError(t, err)
	defer rd.Close()

	reads, err := rd.Reads()
	require.NoError(t, err)
	require.Len(t, reads, 3)
}

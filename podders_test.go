package podders

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Adoni5/podders/errs"
	"github.com/Adoni5/podders/format"
	"github.com/Adoni5/podders/table"
)

func TestCreateOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapper.pod5")

	samples := make([]int16, 45000)
	for i := range samples {
		samples[i] = int16(i % 32768)
	}

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.PushRunInfo(table.RunInfo{AcquisitionID: "acq-1", SampleRate: 4000}))
	require.NoError(t, w.PushRead(table.Read{
		ReadID:    uuid.New(),
		Signal:    samples,
		PoreType:  table.PoreTypeR941,
		EndReason: table.EndReasonUnblockMuxChange,
		RunInfo:   "acq-1",
	}))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	contents, err := r.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contents.Reads, 1)
	require.Equal(t, []uint64{0, 1, 2}, contents.Reads[0].SignalIndex)
	require.Len(t, contents.Signal, 3)
	require.Equal(t, uint32(5000), contents.Signal[2].NumSamples)

	got, err := r.ReadSignal(contents.Reads[0], contents.Signal)
	require.NoError(t, err)
	require.Equal(t, samples, got)
}

func TestLocateTable_ReadBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locate.pod5")

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.PushRead(table.Read{ReadID: uuid.New(), Signal: []int16{1, 2, 3}, RunInfo: "acq"}))
	require.NoError(t, w.Close())

	ef, err := LocateTable(path, format.ContentReadsTable)
	require.NoError(t, err)

	raw, err := ReadBytes(path, ef.Offset, ef.Length)
	require.NoError(t, err)

	// the located bytes decode on their own with nothing outside the span
	reads, _, err := table.DecodeReads(bytes.NewReader(raw), memory.DefaultAllocator)
	require.NoError(t, err)
	require.Len(t, reads, 1)
	require.Equal(t, []uint64{0}, reads[0].SignalIndex)

	fr, err := ipc.NewFileReader(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 21, fr.Schema().NumFields())
	fr.Close()

	_, err = LocateTable(path, format.ContentOtherIndex)
	require.ErrorIs(t, err, errs.ErrContentNotFound)
}

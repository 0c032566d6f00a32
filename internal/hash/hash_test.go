package hash

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	data := []byte("ARROW1 table bytes")
	require.Equal(t, xxhash.Sum64(data), Sum(data))
	require.NotEqual(t, Sum(data), Sum(data[1:]))
}

func TestReader(t *testing.T) {
	data := bytes.Repeat([]byte{0x8B, 'P', 'O', 'D'}, 10000)

	got, err := Reader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, Sum(data), got)

	section := io.NewSectionReader(bytes.NewReader(data), 4, 16)
	got, err = Reader(section)
	require.NoError(t, err)
	require.Equal(t, Sum(data[4:20]), got)
}

func TestReader_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := Reader(iotest.ErrReader(boom))
	require.ErrorIs(t, err, boom)
}

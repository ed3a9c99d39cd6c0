package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBlobExact(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 8192)
	got, err := ReadBlob(bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestReadBlobPartial(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 400000)
	_, err := ReadBlob(bytes.NewReader(payload), 500000)

	var partial *PartialReadError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, int64(500000), partial.Expected)
	require.Equal(t, int64(400000), partial.Received)
}

func TestReadBlobZero(t *testing.T) {
	got, err := ReadBlob(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadBlobNegative(t *testing.T) {
	_, err := ReadBlob(bytes.NewReader(nil), -1)
	require.Error(t, err)
}

func TestReadBlobLeavesFollowingFrameIntact(t *testing.T) {
	var buf bytes.Buffer
	blob := bytes.Repeat([]byte{0x7F}, 100)
	buf.Write(blob)
	require.NoError(t, WriteFrame(&buf, Envelope{Type: "NEXT"}))

	got, err := ReadBlob(&buf, 100)
	require.NoError(t, err)
	require.Equal(t, blob, got)

	env, err := NewDecoder(&buf).Next()
	require.NoError(t, err)
	require.Equal(t, "NEXT", env.Type)
}

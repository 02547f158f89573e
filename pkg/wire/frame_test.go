package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello, framed world")

	require.NoError(t, WriteFrame(&buf, payload, DefaultFrameCap))

	got, err := ReadFrame(&buf, DefaultFrameCap)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriteFrameExceedsCap(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, 100), 10)
	assert.Error(t, err)
}

func TestReadFrameExceedsCap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, make([]byte, 100), DefaultFrameCap))

	_, err := ReadFrame(&buf, 10)
	assert.Error(t, err)
}

func TestReadFrameEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), DefaultFrameCap)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("0123456789"), DefaultFrameCap))

	truncated := buf.Bytes()[:len(buf.Bytes())-3]
	_, err := ReadFrame(bytes.NewReader(truncated), DefaultFrameCap)
	assert.Error(t, err)
}

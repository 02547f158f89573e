package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultFrameCap is the maximum byte length of a single framed message,
// applied when a component does not override it. It replaces the
// original single-recv 1024-byte cap with a far more generous bound now
// that length-prefixing makes the cap a safety limit rather than the de
// facto message size.
const DefaultFrameCap = 1 << 20 // 1 MiB

// frameHeaderSize is the length, in bytes, of the length prefix.
const frameHeaderSize = 4

// ReadFrame reads one length-prefixed message from r: a 4-byte
// big-endian uint32 byte count followed by that many bytes. It returns
// io.EOF unmodified when the connection closes cleanly before any bytes
// of a new frame are read, and a wrapped error for any other failure,
// including a frame whose declared length exceeds cap.
func ReadFrame(r io.Reader, cap uint32) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > cap {
		return nil, fmt.Errorf("frame of %d bytes exceeds cap of %d", length, cap)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}
	return body, nil
}

// WriteFrame writes data to w prefixed with its 4-byte big-endian byte
// count. It returns an error if data exceeds cap.
func WriteFrame(w io.Writer, data []byte, cap uint32) error {
	if uint32(len(data)) > cap {
		return fmt.Errorf("frame of %d bytes exceeds cap of %d", len(data), cap)
	}

	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing frame body: %w", err)
	}
	return nil
}

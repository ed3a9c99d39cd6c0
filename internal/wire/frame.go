package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize caps the declared payload length of a single frame. Chunk
// frames carry base64 chunk data plus metadata, so this sits well above the
// 8 KiB chunk size.
const MaxFrameSize = 1 << 20

// ErrPeerClosed is returned when the remote end closed the connection. It is
// a normal end-of-conversation signal, not a protocol error.
var ErrPeerClosed = errors.New("wire: peer closed connection")

// MalformedFrameError is returned when a fully read frame decodes to invalid
// JSON. The stream is still aligned on a frame boundary, so the connection
// survives it; the caller is expected to send an error envelope and keep
// reading.
type MalformedFrameError struct {
	Reason string
	Err    error
}

func (e *MalformedFrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire: malformed frame: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("wire: malformed frame: %s", e.Reason)
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// FrameTooLargeError is returned when a frame declares a payload above
// MaxFrameSize. The declared bytes are never read, so the stream cannot be
// realigned; the caller must close the connection.
type FrameTooLargeError struct {
	Length uint32
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("wire: frame declares %d bytes, limit is %d", e.Length, MaxFrameSize)
}

// Encode serializes payload as JSON and prepends the 4-byte big-endian
// length prefix.
func Encode(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: encode frame: %w", err)
	}
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[4:], body)
	return buf, nil
}

// WriteFrame encodes payload and writes the full frame to w.
func WriteFrame(w io.Writer, payload any) error {
	frame, err := Encode(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("wire: write frame: %w", err)
	}
	return nil
}

// Decoder reads length-prefixed JSON frames from a stream.
type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Reader exposes the underlying stream so the bulk binary phase that follows
// a frame can be consumed from the same position.
func (d *Decoder) Reader() io.Reader { return d.r }

// Next blocks until one full frame is available and decodes it into an
// Envelope. A stream that ends before the length prefix or mid-payload
// yields ErrPeerClosed. Invalid JSON yields *MalformedFrameError.
func (d *Decoder) Next() (Envelope, error) {
	var env Envelope
	raw, err := d.NextRaw()
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, &MalformedFrameError{Reason: "invalid JSON payload", Err: err}
	}
	return env, nil
}

// NextRaw reads one frame and returns the undecoded JSON payload bytes.
func (d *Decoder) NextRaw() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		return nil, ErrPeerClosed
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, &FrameTooLargeError{Length: length}
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(d.r, body); err != nil {
		// A short read here means the peer went away mid-frame. The
		// partial bytes are useless, so this is not a malformed frame.
		return nil, ErrPeerClosed
	}
	return body, nil
}

package wire

import (
	"fmt"
	"io"
)

// PartialReadError reports a bulk binary phase that ended before the declared
// byte count arrived.
type PartialReadError struct {
	Expected int64
	Received int64
}

func (e *PartialReadError) Error() string {
	return fmt.Sprintf("wire: partial binary read: got %d of %d bytes", e.Received, e.Expected)
}

// ReadBlob reads exactly size raw bytes that follow a metadata frame, looping
// on partial reads. If the stream ends early it returns *PartialReadError
// wrapping the byte counts; the partial data is discarded.
func ReadBlob(r io.Reader, size int64) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("wire: negative blob size %d", size)
	}
	buf := make([]byte, size)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, &PartialReadError{Expected: size, Received: int64(n)}
	}
	return buf, nil
}

// WriteBlob writes the raw bytes of a bulk binary phase. The caller must have
// already written the metadata frame declaring len(data).
func WriteBlob(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("wire: write blob: %w", err)
	}
	return nil
}

// BlobResponse is returned by download handlers. The connection layer writes
// Payload as one frame and then Data as raw bytes with no extra framing,
// holding the connection's write lock across both so no push can interleave.
type BlobResponse struct {
	Payload any
	Data    []byte
}

package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/transfer"
	"github.com/learnlive/server/internal/wire"
)

func studentSession() *session.Session {
	return &session.Session{Token: "tok", UserID: "u1", Role: "student", Name: "Stud", Email: "s@example.com"}
}

func TestChunkedTransferFlow(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})
	ctx := context.Background()

	payload := bytes.Repeat([]byte("learnlive"), 2000) // 18000 bytes, 3 chunks

	req := newRequest(t, wire.TypeStartFileTransfer, map[string]any{
		"filename":    "notes.txt",
		"filesize":    len(payload),
		"file_type":   "text/plain",
		"transfer_id": "t1",
	})
	req.Session = studentSession()

	resp := StartFileTransfer(ctx, deps, req)
	start, ok := resp.(StartResponse)
	require.True(t, ok, "got %T: %v", resp, resp)
	require.Equal(t, transfer.ChunkSize, start.ChunkSize)
	require.Equal(t, 3, start.TotalChunks)

	// Send the chunks out of order.
	for _, chunk := range []int{2, 0, 1} {
		lo := chunk * transfer.ChunkSize
		hi := lo + transfer.ChunkSize
		if hi > len(payload) {
			hi = len(payload)
		}
		creq := newRequest(t, wire.TypeFileChunk, map[string]any{
			"transfer_id":  "t1",
			"chunk_number": chunk,
			"chunk_size":   hi - lo,
			"chunk_data":   base64.StdEncoding.EncodeToString(payload[lo:hi]),
		})
		creq.Session = studentSession()

		ack, ok := FileChunk(ctx, deps, creq).(ChunkAck)
		require.True(t, ok)
		require.Equal(t, chunk, ack.ChunkNumber)
	}

	ereq := newRequest(t, wire.TypeEndFileTransfer, map[string]any{"transfer_id": "t1"})
	ereq.Session = studentSession()

	done, ok := EndFileTransfer(ctx, deps, ereq).(CompleteAck)
	require.True(t, ok)
	require.Equal(t, wire.TypeUploadCompleteAck, done.Type)
	require.Equal(t, 3, done.TotalChunks)
	require.Equal(t, int64(len(payload)), done.TotalBytes)

	stored, err := os.ReadFile(done.Filepath)
	require.NoError(t, err)
	require.Equal(t, payload, stored)
}

func TestFileChunkUnknownTransfer(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeFileChunk, map[string]any{
		"transfer_id":  "missing",
		"chunk_number": 7,
		"chunk_size":   3,
		"chunk_data":   base64.StdEncoding.EncodeToString([]byte("abc")),
	})
	req.Session = studentSession()

	resp := FileChunk(context.Background(), deps, req)
	ce, ok := resp.(chunkError)
	require.True(t, ok)
	require.Equal(t, "Invalid transfer ID", ce.Error)
	require.Equal(t, 7, ce.ChunkNumber)
}

func TestFileChunkBadEncoding(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeFileChunk, map[string]any{
		"transfer_id":  "t1",
		"chunk_number": 0,
		"chunk_size":   3,
		"chunk_data":   "%%%not-base64%%%",
	})
	req.Session = studentSession()

	ce, ok := FileChunk(context.Background(), deps, req).(chunkError)
	require.True(t, ok)
	require.Equal(t, "Invalid chunk encoding", ce.Error)
}

func TestStartFileTransferRejectsBadFile(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeStartFileTransfer, map[string]any{
		"filename":    "virus.exe",
		"filesize":    100,
		"transfer_id": "t1",
	})
	req.Session = studentSession()

	_, isErr := StartFileTransfer(context.Background(), deps, req).(wire.ErrorResponse)
	require.True(t, isErr)
}

func TestDownloadFileReturnsBlob(t *testing.T) {
	dir := t.TempDir()
	deps := newTestDeps(t, testDepsConfig{uploadDir: dir})

	content := []byte("syllabus body")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "syllabus.txt"), content, 0o644))

	req := newRequest(t, wire.TypeDownloadFile, map[string]any{
		"file_path":  "/anywhere/../syllabus.txt",
		"request_id": "r1",
	})
	req.Session = studentSession()

	resp := DownloadFile(context.Background(), deps, req)
	blob, ok := resp.(*wire.BlobResponse)
	require.True(t, ok, "got %T", resp)
	require.Equal(t, content, blob.Data)

	meta, ok := blob.Payload.(FileDataResponse)
	require.True(t, ok)
	require.Equal(t, wire.TypeFileData, meta.Type)
	require.Equal(t, "syllabus.txt", meta.Filename)
	require.Equal(t, int64(len(content)), meta.Size)
	require.Equal(t, "text/plain", meta.ContentType)
	require.Equal(t, "r1", meta.RequestID)
}

func TestDownloadFileMissing(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeDownloadFile, map[string]any{"file_path": "nope.txt"})
	req.Session = studentSession()

	er, ok := DownloadFile(context.Background(), deps, req).(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "File not found", er.Error)
}

type fixedBlob struct {
	data    []byte
	err     error
	drained int64
}

func (b *fixedBlob) ReadBlob(size int64) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.data, nil
}

func (b *fixedBlob) Drain(size int64) error {
	b.drained += size
	return nil
}

func TestReceiveBlobPartialUpload(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	req := newRequest(t, wire.TypeUploadMaterial, nil)
	req.Blob = &fixedBlob{err: &wire.PartialReadError{Expected: 500000, Received: 400000}}

	_, errResp := receiveBlob(deps, req, "big.pdf", 500000)
	er, ok := errResp.(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "Incomplete file upload: received 400000 of 500000 bytes", er.Error)
}

func TestReceiveBlobStoresFile(t *testing.T) {
	dir := t.TempDir()
	deps := newTestDeps(t, testDepsConfig{uploadDir: dir})

	content := []byte("submission bytes")
	req := newRequest(t, wire.TypeSubmitAssignment, nil)
	req.Blob = &fixedBlob{data: content}

	path, errResp := receiveBlob(deps, req, "answer.txt", int64(len(content)))
	require.Nil(t, errResp)

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, stored)
	require.Equal(t, dir, filepath.Dir(path))
}

func TestReceiveBlobRejectsDisallowedExtension(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	blob := &fixedBlob{data: []byte("0123456789")}
	req := newRequest(t, wire.TypeUploadMaterial, nil)
	req.Blob = blob

	_, errResp := receiveBlob(deps, req, "tool.exe", 10)
	er, ok := errResp.(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "File type not allowed", er.Error)

	// The announced bytes are consumed even though the file was rejected.
	require.Equal(t, int64(10), blob.drained)
}

func TestReceiveBlobDrainCapsAnnouncedSize(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	blob := &fixedBlob{}
	req := newRequest(t, wire.TypeUploadMaterial, nil)
	req.Blob = blob

	_, errResp := receiveBlob(deps, req, "huge.pdf", transfer.MaxFileSize+1)
	require.NotNil(t, errResp)
	require.Equal(t, int64(transfer.MaxFileSize), blob.drained)
}

func TestSubmitAssignmentRoleRejectionDrainsUpload(t *testing.T) {
	deps := newTestDeps(t, testDepsConfig{})

	blob := &fixedBlob{}
	req := newRequest(t, wire.TypeSubmitAssignment, map[string]any{
		"assignment_id": "a1",
		"filename":      "answers.txt",
		"file_size":     25,
	})
	req.Session = teacherSession()
	req.Blob = blob

	er, ok := SubmitAssignment(context.Background(), deps, req).(wire.ErrorResponse)
	require.True(t, ok)
	require.Equal(t, "Only students can submit assignments", er.Error)
	require.Equal(t, int64(25), blob.drained)
}

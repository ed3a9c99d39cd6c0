package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/transfer"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// receiveBlob validates the announced file, reads its bulk binary phase from
// the connection and stores it under the upload directory. The second return
// value is a ready-to-send error envelope, nil on success. On rejection the
// announced bytes are still consumed so the frame loop stays aligned.
func receiveBlob(deps Deps, req *router.Request, filename string, size int64) (string, any) {
	if req.Blob == nil {
		return "", wire.Errorf("Connection does not support file upload")
	}
	filename = filepath.Base(filename)
	if reject := validateUpload(filename, size); reject != nil {
		discardBlob(req, size)
		return "", reject
	}

	data, err := req.Blob.ReadBlob(size)
	if err != nil {
		var partial *wire.PartialReadError
		if errors.As(err, &partial) {
			return "", wire.Errorf(fmt.Sprintf(
				"Incomplete file upload: received %d of %d bytes", partial.Received, partial.Expected))
		}
		return "", wire.Errorf("File upload failed")
	}

	storedName := fmt.Sprintf("%d_%s", time.Now().Unix(), filename)
	path := filepath.Join(deps.uploadDir, storedName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Errorf("store upload %s: %v", filename, err)
		return "", wire.Errorf("Failed to store file")
	}
	return path, nil
}

func validateUpload(filename string, size int64) any {
	if filename == "" || filename == "." {
		return wire.Errorf("Missing filename")
	}
	if !transfer.AllowedExtension(filename) {
		return wire.Errorf("File type not allowed")
	}
	if size <= 0 || size > transfer.MaxFileSize {
		return wire.Errorf(fmt.Sprintf("Invalid file size, max %d MB", transfer.MaxFileSize/(1<<20)))
	}
	return nil
}

// discardBlob consumes the raw bytes of a rejected bulk upload. The peer has
// already committed to writing the announced count, so they must leave the
// stream before the next frame is read. The count is capped; a peer
// announcing more than the cap gets its connection torn down by the garbage
// that follows.
func discardBlob(req *router.Request, size int64) {
	if req.Blob == nil || size <= 0 {
		return
	}
	if size > transfer.MaxFileSize {
		size = transfer.MaxFileSize
	}
	if err := req.Blob.Drain(size); err != nil {
		logger.Debugf("discard rejected upload: %v", err)
	}
}

// StartResponse acknowledges a chunked transfer start.
type StartResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	TransferID  string `json:"transfer_id"`
	ChunkSize   int    `json:"chunk_size"`
	TotalChunks int    `json:"total_chunks"`
}

// ChunkAck acknowledges one received chunk with cumulative progress.
type ChunkAck struct {
	Type        string  `json:"type"`
	Success     bool    `json:"success"`
	TransferID  string  `json:"transfer_id"`
	ChunkNumber int     `json:"chunk_number"`
	Received    int64   `json:"received"`
	Progress    float64 `json:"progress"`
}

// CompleteAck reports the final stored path and totals of a finished
// transfer.
type CompleteAck struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	TransferID  string `json:"transfer_id"`
	Filepath    string `json:"filepath"`
	Filename    string `json:"filename"`
	TotalChunks int    `json:"total_chunks"`
	TotalBytes  int64  `json:"total_bytes"`
}

// chunkError is an error envelope that names the chunk it rejects.
type chunkError struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	ChunkNumber int    `json:"chunk_number"`
}

// StartFileTransfer validates the announced file and opens a chunked
// transfer.
func StartFileTransfer(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		Filename   string `json:"filename"`
		Filesize   int64  `json:"filesize"`
		FileType   string `json:"file_type"`
		TransferID string `json:"transfer_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	res, err := deps.tracker.Start(req.ConnID, p.TransferID, p.Filename, p.Filesize, p.FileType)
	if err != nil {
		var verr *transfer.ValidationError
		if errors.As(err, &verr) {
			return wire.Errorf(verr.Reason)
		}
		logger.Errorf("start transfer: %v", err)
		return wire.Errorf("Failed to start transfer")
	}
	return StartResponse{
		Type: wire.TypeSuccess, Success: true, Message: "Ready to receive file",
		TransferID: res.TransferID, ChunkSize: res.ChunkSize, TotalChunks: res.TotalChunks,
	}
}

// FileChunk appends one base64 chunk to its transfer and acknowledges it.
func FileChunk(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		TransferID  string `json:"transfer_id"`
		ChunkNumber int    `json:"chunk_number"`
		ChunkSize   int    `json:"chunk_size"`
		ChunkData   string `json:"chunk_data"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	data, err := base64.StdEncoding.DecodeString(p.ChunkData)
	if err != nil {
		return chunkError{wire.TypeError, false, "Invalid chunk encoding", p.ChunkNumber}
	}

	res, err := deps.tracker.Chunk(p.TransferID, p.ChunkNumber, p.ChunkSize, data)
	if errors.Is(err, transfer.ErrNotFound) {
		return chunkError{wire.TypeError, false, "Invalid transfer ID", p.ChunkNumber}
	}
	if err != nil {
		logger.Errorf("file chunk: %v", err)
		return chunkError{wire.TypeError, false, "Failed to process chunk", p.ChunkNumber}
	}
	return ChunkAck{
		Type: wire.TypeChunkAck, Success: true,
		TransferID: res.TransferID, ChunkNumber: res.ChunkNumber,
		Received: res.Received, Progress: res.Progress,
	}
}

// EndFileTransfer closes the transfer and reports where the file was stored.
func EndFileTransfer(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		TransferID string `json:"transfer_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}

	res, err := deps.tracker.Complete(p.TransferID)
	if errors.Is(err, transfer.ErrNotFound) {
		return wire.Errorf("Invalid transfer ID")
	}
	if err != nil {
		logger.Errorf("end transfer: %v", err)
		return wire.Errorf("Failed to complete transfer")
	}
	return CompleteAck{
		Type: wire.TypeUploadCompleteAck, Success: true,
		TransferID: res.TransferID, Filepath: res.Path, Filename: res.StoredName,
		TotalChunks: res.TotalChunks, TotalBytes: res.TotalBytes,
	}
}

// FileDataResponse is the metadata frame of a bulk binary download; exactly
// Size raw bytes follow it on the wire.
type FileDataResponse struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	RequestID   string `json:"request_id,omitempty"`
}

// DownloadFile streams a stored file back to the client as a metadata frame
// followed by raw bytes.
func DownloadFile(ctx context.Context, deps Deps, req *router.Request) any {
	var p struct {
		FilePath  string `json:"file_path"`
		RequestID string `json:"request_id"`
	}
	if err := decodeData(req, &p); err != nil {
		return wire.Errorf("Invalid request data")
	}
	if p.FilePath == "" {
		return wire.Errorf("No file path provided")
	}

	// Serve only files that actually live under the upload directory.
	path := filepath.Join(deps.uploadDir, filepath.Base(p.FilePath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return wire.Errorf("File not found")
		}
		logger.Errorf("download %s: %v", path, err)
		return wire.Errorf("Failed to read file")
	}

	contentType := detectContentType(path, data)
	return &wire.BlobResponse{
		Payload: FileDataResponse{
			Type: wire.TypeFileData, Success: true,
			Filename:    filepath.Base(path),
			ContentType: contentType,
			Size:        int64(len(data)),
			RequestID:   p.RequestID,
		},
		Data: data,
	}
}

func detectContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".md":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".zip":
		return "application/zip"
	}
	return http.DetectContentType(data)
}

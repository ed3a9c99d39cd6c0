package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/learnlive/server/pkg/logger"
)

const (
	// ChunkSize is the fixed chunk payload size the server advertises on
	// transfer start.
	ChunkSize = 8192
	// MaxFileSize caps uploads at 50 MiB.
	MaxFileSize = 50 << 20
)

// allowedExtensions is the upload allow-list, lowercase without dots.
var allowedExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "ppt": true, "pptx": true,
	"xls": true, "xlsx": true, "txt": true, "md": true, "zip": true,
	"png": true, "jpg": true, "jpeg": true, "gif": true,
}

// AllowedExtension reports whether filename's extension is on the upload
// allow-list.
func AllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return allowedExtensions[ext]
}

// ErrNotFound is returned when a chunk or completion references a transfer id
// the tracker does not know.
var ErrNotFound = errors.New("transfer: unknown transfer id")

// ValidationError rejects a transfer before it enters the receiving state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "transfer: " + e.Reason }

type transfer struct {
	id         string
	ownerConn  string
	filename   string
	storedName string
	path       string
	filesize   int64
	fileType   string
	sink       *os.File

	received    int64
	totalChunks int
	chunks      map[int]bool // received chunk numbers; completeness source of truth
}

// StartResult acknowledges a transfer start.
type StartResult struct {
	TransferID  string
	ChunkSize   int
	TotalChunks int
}

// ChunkResult acknowledges one received chunk.
type ChunkResult struct {
	TransferID  string
	ChunkNumber int
	Received    int64
	Progress    float64
}

// CompleteResult reports the final state of a finished transfer.
type CompleteResult struct {
	TransferID  string
	Path        string
	StoredName  string
	TotalChunks int
	TotalBytes  int64
}

// Tracker owns all in-progress chunked uploads. It is shared by every
// connection goroutine; all map access is serialized by the mutex. Each
// transfer records its owning connection so abandoned sinks can be released
// when that connection drops.
type Tracker struct {
	uploadDir string

	mu        sync.Mutex
	transfers map[string]*transfer
}

func NewTracker(uploadDir string) (*Tracker, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("transfer: create upload dir: %w", err)
	}
	return &Tracker{
		uploadDir: uploadDir,
		transfers: make(map[string]*transfer),
	}, nil
}

// Start validates the announced file and opens its sink. On success the
// transfer enters the receiving state and chunks for transferID are accepted.
func (t *Tracker) Start(ownerConn, transferID, filename string, filesize int64, fileType string) (StartResult, error) {
	if transferID == "" {
		return StartResult{}, &ValidationError{Reason: "missing transfer id"}
	}
	if filesize <= 0 {
		return StartResult{}, &ValidationError{Reason: "invalid file size"}
	}
	if filesize > MaxFileSize {
		return StartResult{}, &ValidationError{
			Reason: fmt.Sprintf("file too large, max size %d MB", MaxFileSize/(1<<20)),
		}
	}
	filename = filepath.Base(filename)
	if !AllowedExtension(filename) {
		return StartResult{}, &ValidationError{Reason: fmt.Sprintf("file type %q not allowed", filepath.Ext(filename))}
	}

	storedName := fmt.Sprintf("%d_%s", time.Now().Unix(), filename)
	path := filepath.Join(t.uploadDir, storedName)
	sink, err := os.Create(path)
	if err != nil {
		return StartResult{}, fmt.Errorf("transfer: open sink: %w", err)
	}

	totalChunks := int((filesize + ChunkSize - 1) / ChunkSize)

	t.mu.Lock()
	if old, exists := t.transfers[transferID]; exists {
		// A client reusing an id abandons the earlier attempt.
		old.discard()
	}
	t.transfers[transferID] = &transfer{
		id:          transferID,
		ownerConn:   ownerConn,
		filename:    filename,
		storedName:  storedName,
		path:        path,
		filesize:    filesize,
		fileType:    fileType,
		sink:        sink,
		totalChunks: totalChunks,
		chunks:      make(map[int]bool),
	}
	t.mu.Unlock()

	logger.Infof("transfer %s started: %s (%d bytes, %d chunks)", transferID, filename, filesize, totalChunks)
	return StartResult{TransferID: transferID, ChunkSize: ChunkSize, TotalChunks: totalChunks}, nil
}

// Chunk appends one decoded chunk. Chunks may arrive in any order; data is
// written at the chunk's byte offset so the sink ends up in original order.
// A mismatch between declaredSize and len(data) is logged, not fatal.
func (t *Tracker) Chunk(transferID string, chunkNumber int, declaredSize int, data []byte) (ChunkResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.transfers[transferID]
	if !ok {
		return ChunkResult{}, ErrNotFound
	}
	if chunkNumber < 0 {
		return ChunkResult{}, &ValidationError{Reason: "negative chunk number"}
	}
	if declaredSize != len(data) {
		logger.Warnf("transfer %s: chunk %d declared %d bytes, got %d",
			transferID, chunkNumber, declaredSize, len(data))
	}

	offset := int64(chunkNumber) * ChunkSize
	if _, err := tr.sink.WriteAt(data, offset); err != nil {
		return ChunkResult{}, fmt.Errorf("transfer: write chunk %d: %w", chunkNumber, err)
	}
	if !tr.chunks[chunkNumber] {
		tr.chunks[chunkNumber] = true
		tr.received += int64(len(data))
	}

	progress := float64(tr.received) / float64(tr.filesize) * 100
	return ChunkResult{
		TransferID:  transferID,
		ChunkNumber: chunkNumber,
		Received:    tr.received,
		Progress:    progress,
	}, nil
}

// Complete closes the sink and removes the transfer.
func (t *Tracker) Complete(transferID string) (CompleteResult, error) {
	t.mu.Lock()
	tr, ok := t.transfers[transferID]
	if ok {
		delete(t.transfers, transferID)
	}
	t.mu.Unlock()
	if !ok {
		return CompleteResult{}, ErrNotFound
	}

	if err := tr.sink.Close(); err != nil {
		return CompleteResult{}, fmt.Errorf("transfer: close sink: %w", err)
	}

	logger.Infof("transfer %s complete: %s (%d/%d chunks, %d bytes)",
		transferID, tr.storedName, len(tr.chunks), tr.totalChunks, tr.received)
	return CompleteResult{
		TransferID:  transferID,
		Path:        tr.path,
		StoredName:  tr.storedName,
		TotalChunks: len(tr.chunks),
		TotalBytes:  tr.received,
	}, nil
}

// ReleaseOwner discards every transfer owned by a connection that dropped
// while still receiving, closing and deleting the partial sinks.
func (t *Tracker) ReleaseOwner(ownerConn string) {
	t.mu.Lock()
	var orphaned []*transfer
	for id, tr := range t.transfers {
		if tr.ownerConn == ownerConn {
			orphaned = append(orphaned, tr)
			delete(t.transfers, id)
		}
	}
	t.mu.Unlock()

	for _, tr := range orphaned {
		logger.Warnf("transfer %s abandoned by %s, discarding partial file", tr.id, ownerConn)
		tr.discard()
	}
}

// Active returns the number of in-progress transfers.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.transfers)
}

func (tr *transfer) discard() {
	tr.sink.Close()
	os.Remove(tr.path)
}

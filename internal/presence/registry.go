package presence

import (
	"sync"

	"github.com/learnlive/server/pkg/logger"
)

// FrameWriter is the write side of a live client connection. Implementations
// must serialize concurrent writers internally.
type FrameWriter interface {
	WriteFrame(payload any) error
}

// Display is the presentation data kept alongside an online user's socket.
type Display struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type entry struct {
	writer  FrameWriter
	display Display
}

// Registry tracks which authenticated users are currently connected and owns
// best-effort fan-out to them. Every connection goroutine touches it, so all
// access goes through the lock; broadcast snapshots the map before writing so
// a concurrent register or unregister cannot corrupt iteration.
type Registry struct {
	mu     sync.RWMutex
	online map[string]entry // userID -> live socket
}

func NewRegistry() *Registry {
	return &Registry{
		online: make(map[string]entry),
	}
}

// Register records a user as online. A later login for the same user
// replaces the earlier entry (last login wins).
func (r *Registry) Register(userID string, w FrameWriter, display Display) {
	r.mu.Lock()
	r.online[userID] = entry{writer: w, display: display}
	r.mu.Unlock()
	logger.Debugf("presence: user %s online", userID)
}

// Unregister removes a user's presence entry if present.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.online, userID)
	r.mu.Unlock()
	logger.Debugf("presence: user %s offline", userID)
}

// UnregisterIf removes userID's entry only if it still points at w. A
// connection that is cleaning up must not evict a newer login's entry.
func (r *Registry) UnregisterIf(userID string, w FrameWriter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.online[userID]; ok && e.writer == w {
		delete(r.online, userID)
		logger.Debugf("presence: user %s offline", userID)
	}
}

// IsOnline reports whether userID currently has a presence entry.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.online[userID]
	return ok
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.online)
}

// SendTo delivers payload to one online user. A write failure drops that
// user's presence entry; the failure is never surfaced to the request that
// triggered the push.
func (r *Registry) SendTo(userID string, payload any) bool {
	r.mu.RLock()
	e, ok := r.online[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if err := e.writer.WriteFrame(payload); err != nil {
		logger.Warnf("presence: push to %s failed, dropping entry: %v", userID, err)
		r.Unregister(userID)
		return false
	}
	return true
}

// BroadcastAll delivers payload to every online user and returns the number
// of successful deliveries. Failed recipients are unregistered and delivery
// continues with the rest.
func (r *Registry) BroadcastAll(payload any) int {
	r.mu.RLock()
	snapshot := make(map[string]entry, len(r.online))
	for id, e := range r.online {
		snapshot[id] = e
	}
	r.mu.RUnlock()

	delivered := 0
	for id, e := range snapshot {
		if err := e.writer.WriteFrame(payload); err != nil {
			logger.Warnf("presence: broadcast to %s failed, dropping entry: %v", id, err)
			r.Unregister(id)
			continue
		}
		delivered++
	}
	return delivered
}

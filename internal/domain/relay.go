package domain

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/models"
	"github.com/Vovarama1992/mediarelay/internal/ports"
)

// RelayService coordinates deferred media resolution: it owns the media map
// and the pending queue behind a single mutex, which is the serialization
// point for the message path and the lifecycle manager's invalidation step.
// Resolved messages and upload requests are emitted on channels, consumed by
// listener goroutines that push into the websocket hub. Events are sent
// while the lock is held, so channel order equals serialization order.
type RelayService struct {
	mu sync.Mutex

	media   *MediaMap
	pending *PendingQueue

	broadcasts chan models.Message
	uploadReqs chan ports.UploadRequest

	now func() time.Time
}

func NewRelayService() *RelayService {
	return &RelayService{
		media:      NewMediaMap(),
		pending:    NewPendingQueue(),
		broadcasts: make(chan models.Message, 256),
		uploadReqs: make(chan ports.UploadRequest, 256),
		now:        time.Now,
	}
}

func (s *RelayService) Broadcasts() <-chan models.Message {
	return s.broadcasts
}

func (s *RelayService) UploadRequests() <-chan ports.UploadRequest {
	return s.uploadReqs
}

// Submit relays one incoming message. Pre-resolved media broadcasts
// immediately without text scanning. Otherwise already-resolved keys are
// substituted in place; if any key remains unresolved the message is queued
// and the originating client is asked to upload each distinct missing key,
// exactly once per key.
func (s *RelayService) Submit(clientID string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := msg.Content.(models.TextWithReferences)
	if !ok {
		s.broadcasts <- msg
		return
	}

	text := content.Text
	var unresolved []string
	for _, key := range models.ExtractMediaKeys(text) {
		if url, found := s.media.Get(key); found {
			text = strings.ReplaceAll(text, key, url)
		} else {
			unresolved = append(unresolved, key)
		}
	}

	if len(unresolved) == 0 {
		msg.Content = models.TextWithReferences{Text: text}
		s.broadcasts <- msg
		return
	}

	set := make(map[string]struct{}, len(unresolved))
	for _, key := range unresolved {
		set[key] = struct{}{}
	}
	s.pending.Add(&PendingEntry{
		ClientID:   clientID,
		Message:    msg,
		Text:       text,
		Unresolved: set,
		EnqueuedAt: s.now(),
	})
	log.Printf("[relay] queued message=%s unresolved=%d", msg.ID, len(unresolved))

	for _, key := range unresolved {
		s.uploadReqs <- ports.UploadRequest{ClientID: clientID, Key: key}
	}
}

// UploadComplete records key -> url and runs a resolve pass over the queue,
// emitting every message whose last unresolved key this was.
func (s *RelayService) UploadComplete(key, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.media.Put(key, url)

	ready := s.pending.Resolve(key, url)
	for _, e := range ready {
		msg := e.Message
		msg.Content = models.TextWithReferences{Text: e.Text}
		log.Printf("[relay] resolved message=%s key=%s", msg.ID, key)
		s.broadcasts <- msg
	}
}

// ResolveKey reports the durable URL currently mapped to key, if any.
func (s *RelayService) ResolveKey(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.media.Get(key)
}

// InvalidateURL removes any mapping whose URL exactly equals url. Called by
// the lifecycle manager after archiving the underlying file, so future
// submissions cannot resolve to a no-longer-public URL.
func (s *RelayService) InvalidateURL(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.media.InvalidateByURL(url)
	if !ok {
		return false
	}
	log.Printf("[relay] invalidated key=%s url=%s", key, url)
	return true
}

// EvictBefore drops pending entries enqueued before cutoff and returns how
// many were dropped. Evicted messages are never broadcast.
func (s *RelayService) EvictBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := s.pending.EvictBefore(cutoff)
	for _, e := range evicted {
		log.Printf("[relay] evicted message=%s unresolved=%d age=%s",
			e.Message.ID, len(e.Unresolved), s.now().Sub(e.EnqueuedAt))
	}
	return len(evicted)
}

// PendingCount reports how many messages are currently blocked on
// unresolved media.
func (s *RelayService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

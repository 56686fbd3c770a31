package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/msami123/Web-chat-bot/internal/chat"
)

// conversationStore keeps live conversations in memory. When full, the
// least recently updated conversation is evicted.
type conversationStore struct {
	mu    sync.Mutex
	max   int
	convs map[uuid.UUID]*chat.Conversation
}

func newConversationStore(max int) *conversationStore {
	if max <= 0 {
		max = 1000
	}
	return &conversationStore{max: max, convs: make(map[uuid.UUID]*chat.Conversation)}
}

func (s *conversationStore) create() *chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.convs) >= s.max {
		s.evictOldest()
	}
	c := chat.NewConversation()
	s.convs[c.ID] = c
	return c
}

func (s *conversationStore) get(id uuid.UUID) (*chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	return c, ok
}

func (s *conversationStore) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, id)
}

func (s *conversationStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

func (s *conversationStore) evictOldest() {
	var oldest *chat.Conversation
	for _, c := range s.convs {
		if oldest == nil || c.UpdatedAt().Before(oldest.UpdatedAt()) {
			oldest = c
		}
	}
	if oldest != nil {
		delete(s.convs, oldest.ID)
	}
}

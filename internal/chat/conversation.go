package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

// Conversation is the state of one chat session: its message history and
// an optional question queued by a quick action.
type Conversation struct {
	ID uuid.UUID

	mu       sync.Mutex
	messages []domain.Message
	pending  string
	updated  time.Time
}

// NewConversation starts an empty conversation with a random ID.
func NewConversation() *Conversation {
	return &Conversation{ID: uuid.New(), updated: time.Now()}
}

// Append records a message.
func (c *Conversation) Append(role domain.Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, domain.Message{Role: role, Content: content})
	c.updated = time.Now()
}

// Messages returns a copy of the history, oldest first.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.messages...)
}

// Len returns the number of recorded messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Queue sets the question to be asked next, replacing any earlier one.
func (c *Conversation) Queue(question string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = strings.TrimSpace(question)
}

// TakePending pops the queued question.
func (c *Conversation) TakePending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.pending
	c.pending = ""
	return q, q != ""
}

// UpdatedAt returns the time of the last recorded message.
func (c *Conversation) UpdatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updated
}

// QuickAction is a canned bilingual question offered on an empty chat.
type QuickAction struct {
	AR   string `json:"ar"`
	EN   string `json:"en"`
	Icon string `json:"icon"`
}

// Question is the text queued when the action is chosen.
func (a QuickAction) Question() string { return a.AR }

var quickActions = []QuickAction{
	{AR: "خدماتنا", EN: "Our Services", Icon: "🛠️"},
	{AR: "تطبيق ريالك", EN: "Riyalak App", Icon: "💰"},
	{AR: "المصرفية المفتوحة", EN: "Open Banking", Icon: "🏦"},
	{AR: "اتصل بنا", EN: "Contact Us", Icon: "📞"},
}

// QuickActions returns the quick-start actions in display order.
func QuickActions() []QuickAction {
	return append([]QuickAction(nil), quickActions...)
}

package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msami123/Web-chat-bot/internal/chat"
	"github.com/msami123/Web-chat-bot/internal/domain"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Ask(ctx context.Context, conv *chat.Conversation, text string) (chat.Reply, error)
}

// answerMsg carries the result of an asynchronous Ask.
type answerMsg struct {
	reply chat.Reply
	err   error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service  ChatPort
	conv     *chat.Conversation
	actions  []chat.QuickAction
	timeout  time.Duration
	input    textinput.Model
	viewport viewport.Model
	status   string
	thinking bool
	ready    bool
}

// New creates a new TUI model instance. timeout bounds each question; zero
// means no limit.
func New(service ChatPort, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your message... | اكتب رسالتك"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		conv:     chat.NewConversation(),
		actions:  chat.QuickActions(),
		timeout:  timeout,
		input:    ti,
		viewport: vp,
		status:   "Ready.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, vh := historyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input box, spacer
		h := msg.Height - reserved - vh
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, h)
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	case answerMsg:
		m.thinking = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = replyStatus(msg.reply)
		}
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.thinking {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			q := m.input.Value()
			if strings.TrimSpace(q) == "" {
				return m, nil
			}
			m.input.Reset()
			return m.ask(q)
		case "1", "2", "3", "4":
			if m.conv.Len() == 0 && m.input.Value() == "" {
				i := int(msg.String()[0] - '1')
				if i < len(m.actions) {
					m.conv.Queue(m.actions[i].Question())
					q, _ := m.conv.TakePending()
					return m.ask(q)
				}
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) (tea.Model, tea.Cmd) {
	m.thinking = true
	m.status = "Thinking..."
	// Show the question right away; Ask records it in the conversation.
	m.viewport.SetContent(m.renderHistory() + "\n\n" + userStyle.Render("You: ") + strings.TrimSpace(q))
	m.viewport.GotoBottom()
	return m, m.askCmd(q)
}

func (m Model) askCmd(q string) tea.Cmd {
	service, conv, timeout := m.service, m.conv, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		reply, err := service.Ask(ctx, conv, q)
		return answerMsg{reply: reply, err: err}
	}
}

func replyStatus(r chat.Reply) string {
	switch {
	case r.Degraded:
		return fmt.Sprintf("Offline answer from %d chunks (model unavailable)", len(r.Chunks))
	case r.Cached:
		return fmt.Sprintf("Cached answer (%s)", r.Lang)
	default:
		return fmt.Sprintf("Answered from %d chunks (%s)", len(r.Chunks), r.Lang)
	}
}

// View renders the TUI layout and conversation.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("💬 Web Chat Bot")
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	msgs := m.conv.Messages()
	if len(msgs) == 0 {
		return m.renderWelcome()
	}
	var b strings.Builder
	var question string
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case domain.RoleUser:
			question = msg.Content
			b.WriteString(userStyle.Render("You: "))
			b.WriteString(msg.Content)
		default:
			b.WriteString(botStyle.Render("Bot: "))
			if i == len(msgs)-1 {
				b.WriteString(highlightBestSentence(msg.Content, question))
			} else {
				b.WriteString(msg.Content)
			}
		}
	}
	return b.String()
}

func (m Model) renderWelcome() string {
	var b strings.Builder
	b.WriteString("How can I help you? | كيف أساعدك؟\n\nQuick Start\n")
	for i, a := range m.actions {
		fmt.Fprintf(&b, "\n  [%d] %s %s / %s", i+1, a.Icon, a.AR, a.EN)
	}
	return b.String()
}

var (
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	unicodeWordRe   = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe      = regexp.MustCompile(`[^.!?؟]+(?:[.!?؟]+|\z)`)
)

// highlightBestSentence emphasises the sentence of text sharing the most
// words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) < 2 {
		return strings.TrimSpace(text)
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return joinTrimmed(sentences)
	}
	bestIdx := 0
	bestScore := 0
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore == 0 {
		return joinTrimmed(sentences)
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func joinTrimmed(sentences []string) string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msami123/Web-chat-bot/internal/chat"
	"github.com/msami123/Web-chat-bot/internal/domain"
)

type fakeChat struct {
	asked []string
	err   error
}

func (f *fakeChat) Ask(_ context.Context, conv *chat.Conversation, text string) (chat.Reply, error) {
	f.asked = append(f.asked, text)
	if f.err != nil {
		return chat.Reply{}, f.err
	}
	conv.Append(domain.RoleUser, text)
	answer := "reply to " + text
	conv.Append(domain.RoleAssistant, answer)
	return chat.Reply{Text: answer, Lang: "en", Chunks: make([]domain.Chunk, 2)}, nil
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_WelcomeScreen(t *testing.T) {
	m := New(&fakeChat{}, 0)
	assert.Equal(t, "Loading...", m.View())

	m = sized(t, m)
	view := m.View()
	assert.Contains(t, view, "How can I help you?")
	assert.Contains(t, view, "Riyalak App")
}

func TestModel_AskFlow(t *testing.T) {
	svc := &fakeChat{}
	m := sized(t, New(svc, 0))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.thinking)
	assert.Equal(t, "Thinking...", m.status)
	assert.Equal(t, "", m.input.Value())

	// keys are ignored while a question is in flight
	m, cmd2 := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd2)

	msg := cmd()
	m, _ = send(t, m, msg)
	assert.False(t, m.thinking)
	assert.Equal(t, []string{"hello"}, svc.asked)
	assert.Equal(t, "Answered from 2 chunks (en)", m.status)
	assert.Contains(t, m.renderHistory(), "reply to hello")
}

func TestModel_QuickActionKey(t *testing.T) {
	svc := &fakeChat{}
	m := sized(t, New(svc, 0))

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.Equal(t, []string{"تطبيق ريالك"}, svc.asked)

	// once the chat has started, digits are plain input
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	assert.Equal(t, "3", m.input.Value())
	assert.Len(t, svc.asked, 1)
}

func TestModel_AskError(t *testing.T) {
	m := sized(t, New(&fakeChat{err: errors.New("boom")}, 0))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, cmd())
	assert.Equal(t, "Error: boom", m.status)
}

func TestModel_EmptyEnterDoesNothing(t *testing.T) {
	svc := &fakeChat{}
	m := sized(t, New(svc, 0))
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, svc.asked)
}

func TestReplyStatus(t *testing.T) {
	assert.Contains(t, replyStatus(chat.Reply{Degraded: true}), "Offline")
	assert.Equal(t, "Cached answer (ar)", replyStatus(chat.Reply{Cached: true, Lang: "ar"}))
}

func TestHighlightBestSentence(t *testing.T) {
	text := "We offer loans. Riyalak is our wallet app. Call us anytime."
	got := highlightBestSentence(text, "what is the riyalak wallet")
	assert.Contains(t, got, "Riyalak is our wallet app.")
	assert.Contains(t, got, "We offer loans.")

	assert.Equal(t, "single sentence", highlightBestSentence(" single sentence ", "x"))
	assert.Equal(t, "A. B.", highlightBestSentence("A. B.", "zzz"))
}

func TestModel_SendsInputAsTyped(t *testing.T) {
	svc := &fakeChat{}
	m := sized(t, New(svc, 0))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("  hi ")})
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"  hi "}, svc.asked)
}

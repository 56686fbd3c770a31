// Package prompt renders the role-constrained system instructions and the
// per-question user message sent to the model.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/msami123/Web-chat-bot/internal/langdetect"
)

// System is the structured system prompt of the bot.
type System struct {
	Goal         string    `json:"goal"`
	Restrictions []string  `json:"restrictions"`
	Style        []string  `json:"style"`
	Fallbacks    Fallbacks `json:"fallbacks"`
}

// Fallbacks are the canned replies used when the knowledge base has no
// answer.
type Fallbacks struct {
	AR string `json:"ar"`
	EN string `json:"en"`
}

type systemFile struct {
	SystemPrompt System `json:"system_prompt"`
}

// LoadSystem reads a {"system_prompt": {...}} file.
func LoadSystem(path string) (System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return System{}, fmt.Errorf("read system prompt %s: %w", path, err)
	}
	var f systemFile
	if err := json.Unmarshal(data, &f); err != nil {
		return System{}, fmt.Errorf("parse system prompt %s: %w", path, err)
	}
	return f.SystemPrompt, nil
}

// Text renders the system prompt sent with every request.
func (s System) Text() string {
	var b strings.Builder
	b.WriteString(s.Goal)
	b.WriteString("\n\nRestrictions:\n- ")
	b.WriteString(strings.Join(s.Restrictions, "\n- "))
	b.WriteString("\n\nStyle:\n- ")
	b.WriteString(strings.Join(s.Style, "\n- "))
	b.WriteString("\n\nFallback AR: ")
	b.WriteString(s.Fallbacks.AR)
	b.WriteString("\nFallback EN: ")
	b.WriteString(s.Fallbacks.EN)
	b.WriteString("\n\nImportant: Always respond in the same language as the user's question.")
	return strings.TrimSpace(b.String())
}

// Fallback returns the canned reply for lang, English unless lang is Arabic.
func (s System) Fallback(lang string) string {
	if langdetect.Matches(lang, langdetect.Arabic) {
		return s.Fallbacks.AR
	}
	return s.Fallbacks.EN
}

// UserMessage wraps the question and retrieved knowledge for the model.
func UserMessage(query, lang, context string) string {
	return fmt.Sprintf(
		"User Question: %s\nQuestion Language: %s\n\nAvailable Knowledge:\n%s\n\nInstructions: Answer ONLY based on the chunks above.",
		query, lang, context,
	)
}

package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msami123/Web-chat-bot/internal/chunker"
	"github.com/msami123/Web-chat-bot/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newLoader() *Loader {
	return NewLoader(chunker.NewSentenceChunker(2, 0), nil)
}

func TestLoad_KnowledgeFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "knowledge_webbot.json", `{
		"chunks": [
			{"text": "we offer savings accounts", "source": "site", "page": 1, "section": "Accounts", "lang": "en"},
			{"text": "نحن نقدم خدمات التحويل", "source": "site", "page": "2", "lang": "ar"},
			{"source": "no text"}
		]
	}`)

	chunks, err := newLoader().Load(context.Background(), []string{p})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, domain.Chunk{Text: "we offer savings accounts", Source: "site", Page: "1", Section: "Accounts", Lang: "en"}, chunks[0])
	assert.Equal(t, "ar", chunks[1].Lang)
	assert.Equal(t, domain.Locator("2"), chunks[1].Page)
	assert.Equal(t, "", chunks[2].Text)
}

func TestLoad_TextFilesAndGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Open banking lets you share data. Consent is required. It can be revoked.")
	writeFile(t, dir, "b.md", "تطبيق ريالك متاح الآن.")
	writeFile(t, dir, "notes.csv", "ignored,file")

	chunks, err := newLoader().Load(context.Background(), []string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "a.txt", chunks[0].Source)
	assert.Equal(t, "Open banking lets you share data. Consent is required.", chunks[0].Text)
	assert.Equal(t, domain.Locator("2"), chunks[1].Section)
	assert.Equal(t, "b.md", chunks[2].Source)
	assert.Equal(t, "ar", chunks[2].Lang)
}

func TestLoad_EmptyCorpusIsFatal(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "knowledge.json", `{"chunks": []}`)
	blank := writeFile(t, dir, "blank.txt", "   ")

	_, err := newLoader().Load(context.Background(), []string{empty, blank})
	require.ErrorIs(t, err, domain.ErrEmptyCorpus)

	_, err = newLoader().Load(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"chunks": [`)

	_, err := newLoader().Load(context.Background(), []string{bad})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmptyCorpus)

	_, err = newLoader().Load(context.Background(), []string{filepath.Join(dir, "missing.txt")})
	require.Error(t, err)

	_, err = newLoader().Load(context.Background(), []string{filepath.Join(dir, "missing.pdf")})
	require.Error(t, err)
}

func TestLoad_Cancelled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "Hello there.")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader().Load(ctx, []string{p})
	require.ErrorIs(t, err, context.Canceled)
}

package corpus

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/msami123/Web-chat-bot/internal/domain"
)

type knowledgeFile struct {
	Chunks []domain.Chunk `json:"chunks"`
}

// loadKnowledgeFile reads pre-chunked knowledge records. Records keep
// their file order and metadata as written.
func loadKnowledgeFile(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var kf knowledgeFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse knowledge file %s: %w", path, err)
	}
	return kf.Chunks, nil
}

func documentID(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:8])
}

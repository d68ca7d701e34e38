package nekoclient

import (
	"bytes"
	"encoding/json"

	"github.com/dzenfone819-debug/neko-finance/internal/models"
)

// wireTransaction matches rows returned by GET /transactions, where tags
// and photo_urls are stored as JSON-encoded strings.
type wireTransaction struct {
	models.Transaction
	Tags      json.RawMessage `json:"tags"`
	PhotoURLs json.RawMessage `json:"photo_urls"`
}

// decodeList accepts a JSON array or a string holding one.
func decodeList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil
		}
		raw = []byte(inner)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return nil
	}
	return list
}

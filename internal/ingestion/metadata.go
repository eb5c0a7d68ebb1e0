package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

// Metadata describes the text extracted from one document. It is logged with
// each analysis so a problematic upload can be recognized again by its hash.
type Metadata struct {
	ContentType string    `json:"content_type"`
	ExtractedAt time.Time `json:"extracted_at"`
	Hash        string    `json:"hash"`            // SHA-256 of the cleaned text
	Pages       int       `json:"pages,omitempty"` // PDF only
	Characters  int       `json:"characters"`
	Words       int       `json:"words"`
}

// NewMetadata describes already cleaned text.
func NewMetadata(text string, contentType string) *Metadata {
	sum := sha256.Sum256([]byte(text))
	return &Metadata{
		ContentType: contentType,
		ExtractedAt: time.Now().UTC(),
		Hash:        hex.EncodeToString(sum[:]),
		Characters:  utf8.RuneCountInString(text),
		Words:       len(strings.Fields(text)),
	}
}

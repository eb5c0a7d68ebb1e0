// Package ingestion converts uploaded resumes and job descriptions into clean plain text.
package ingestion

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ContentTypePDF is the MIME type of PDF documents.
const ContentTypePDF = "application/pdf"

// ParseError is returned when a document cannot be turned into text: a corrupt or
// empty file, or a PDF without a text layer.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Document is the text extracted from one file.
type Document struct {
	Text     string
	Metadata *Metadata
}

// ExtractText returns the cleaned text of the file at path.
func ExtractText(path, contentType string) (string, error) {
	doc, err := Extract(path, contentType)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// Extract reads the file at path. Files declared as application/pdf, or named *.pdf,
// are parsed as PDF; anything else is read as UTF-8 text with invalid sequences replaced.
// Extract never removes the file.
func Extract(path, contentType string) (*Document, error) {
	if IsPDF(path, contentType) {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := CleanText(strings.ToValidUTF8(string(data), "�"))
	return &Document{Text: text, Metadata: NewMetadata(text, mediaType(contentType))}, nil
}

// IsPDF reports whether a file should be parsed as PDF.
func IsPDF(path, contentType string) bool {
	if mediaType(contentType) == ContentTypePDF {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func extractPDF(path string) (doc *Document, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() == 0 {
		return nil, &ParseError{Message: "file is empty"}
	}

	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ParseError{Message: "malformed PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ParseError{Message: "failed to open PDF", Cause: err}
	}
	defer func() { _ = f.Close() }()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, &ParseError{Message: "failed to extract text", Cause: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return nil, &ParseError{Message: "failed to read text", Cause: err}
	}

	text := CleanText(buf.String())
	if text == "" {
		return nil, &ParseError{Message: "PDF has no extractable text layer"}
	}

	metadata := NewMetadata(text, ContentTypePDF)
	metadata.Pages = reader.NumPage()
	return &Document{Text: text, Metadata: metadata}, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

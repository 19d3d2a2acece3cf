// Package parser extracts plain text from uploaded decision documents so
// citations can be scanned out of them.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the extracted content of one file: a title and the text split
// into paragraphs.
type Document struct {
	Title      string
	Paragraphs []string
}

// Text returns the full document text with paragraphs separated by blank
// lines.
func (d *Document) Text() string {
	return strings.Join(d.Paragraphs, "\n\n")
}

// Extractor converts raw document bytes into a Document.
type Extractor interface {
	Extract(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

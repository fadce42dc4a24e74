// Package docindex converts source documents into chunked indexes and
// persists them as JSON.
package docindex

import (
	"path/filepath"
	"strings"
)

// DefaultChunkSize is the number of units grouped into one chunk.
const DefaultChunkSize = 10

// Format identifies the kind of source document an Index was built from.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatCSV, FormatJSON, FormatText, FormatDOCX, FormatPDF}

// extensionFormats maps a lowercase file extension to its format.
var extensionFormats = map[string]Format{
	".csv":  FormatCSV,
	".json": FormatJSON,
	".txt":  FormatText,
	".docx": FormatDOCX,
	".pdf":  FormatPDF,
}

// DetectFormat infers the format of path from its extension. The second
// return value is false for unsupported extensions.
func DetectFormat(path string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Chunk is a bounded group of consecutive units with a precomputed word count.
type Chunk struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	WordCount int    `json:"word_count"`
}

// Index is the persisted representation of one source document.
type Index struct {
	File    string   `json:"file"`
	Type    Format   `json:"type"`
	Summary string   `json:"summary"`
	Chunks  []Chunk  `json:"chunks"`
	Entries []string `json:"entries"`
}

// WordCount sums the word counts of all chunks.
func (idx *Index) WordCount() int {
	total := 0
	for _, c := range idx.Chunks {
		total += c.WordCount
	}
	return total
}

// normalized returns a copy whose nil slices are replaced by empty ones so
// the JSON form always carries [] instead of null.
func (idx Index) normalized() Index {
	if idx.Chunks == nil {
		idx.Chunks = []Chunk{}
	}
	if idx.Entries == nil {
		idx.Entries = []string{}
	}
	return idx
}

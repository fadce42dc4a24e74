package docindex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mwiater/docqa/internal/extract"
)

// Builder turns one source document into an Index. A failed build returns
// no partial Index.
type Builder interface {
	Format() Format
	Build(ctx context.Context, path string) (*Index, error)
}

// BuilderFor returns the builder for format using chunkSize units per chunk.
func BuilderFor(format Format, chunkSize int) (Builder, error) {
	switch format {
	case FormatCSV:
		return CSVBuilder{ChunkSize: chunkSize}, nil
	case FormatJSON:
		return JSONBuilder{}, nil
	case FormatText:
		return LineBuilder{Type: FormatText, ChunkSize: chunkSize, Read: ReadText}, nil
	case FormatDOCX:
		return LineBuilder{Type: FormatDOCX, ChunkSize: chunkSize, Read: readDOCX}, nil
	case FormatPDF:
		return LineBuilder{Type: FormatPDF, ChunkSize: chunkSize, Read: readPDF}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// CSVBuilder indexes a CSV file row by row.
type CSVBuilder struct {
	ChunkSize int
}

func (CSVBuilder) Format() Format { return FormatCSV }

func (b CSVBuilder) Build(ctx context.Context, path string) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}

	units := make([]string, 0, len(table.Rows))
	entries := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		var cells, pairs []string
		for col, name := range table.Header {
			if row[col] != "" {
				cells = append(cells, row[col])
			}
			pairs = append(pairs, name+"="+row[col])
		}
		units = append(units, strings.Join(cells, " "))
		entries = append(entries, fmt.Sprintf("Row %d: %s", i+1, strings.Join(pairs, ", ")))
	}

	idx := &Index{
		File:    path,
		Type:    FormatCSV,
		Chunks:  ChunkUnits(units, b.ChunkSize),
		Entries: entries,
	}
	idx.Summary = fmt.Sprintf("%d rows, %d chunks, %d words", len(table.Rows), len(idx.Chunks), idx.WordCount())
	return idx, nil
}

// JSONBuilder indexes a JSON document as a single pretty-printed chunk.
type JSONBuilder struct{}

func (JSONBuilder) Format() Format { return FormatJSON }

func (JSONBuilder) Build(ctx context.Context, path string) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, err := ReadJSON(path)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		File:    path,
		Type:    FormatJSON,
		Chunks:  ChunkUnits([]string{prettyJSON(value)}, 1),
		Entries: jsonEntries(value),
	}
	idx.Summary = fmt.Sprintf("%d chunk(s), %d words", len(idx.Chunks), idx.WordCount())
	return idx, nil
}

func jsonEntries(value any) []string {
	switch v := value.(type) {
	case *jsonObject:
		entries := make([]string, 0, len(v.keys))
		for _, key := range v.keys {
			entries = append(entries, key+": "+stringifyJSON(v.values[key]))
		}
		return entries
	case []any:
		entries := make([]string, 0, len(v))
		for _, item := range v {
			entries = append(entries, stringifyJSON(item))
		}
		return entries
	default:
		return []string{stringifyJSON(v)}
	}
}

// LineBuilder indexes line-oriented documents: plain text, DOCX paragraphs
// and PDF lines. Read returns the ordered non-empty units of the file.
type LineBuilder struct {
	Type      Format
	ChunkSize int
	Read      func(path string) ([]string, error)
}

func (b LineBuilder) Format() Format { return b.Type }

func (b LineBuilder) Build(ctx context.Context, path string) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	units, err := b.Read(path)
	if err != nil {
		return nil, err
	}

	entries := make([]string, 0, len(units))
	for i, unit := range units {
		entries = append(entries, fmt.Sprintf("Paragraph %d: %s", i+1, unit))
	}

	idx := &Index{
		File:    path,
		Type:    b.Type,
		Chunks:  ChunkUnits(units, b.ChunkSize),
		Entries: entries,
	}
	idx.Summary = fmt.Sprintf("%d paragraphs, %d chunks, %d words", len(units), len(idx.Chunks), idx.WordCount())
	return idx, nil
}

func statSource(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path, Err: err}
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}

func readDOCX(path string) ([]string, error) {
	if err := statSource(path); err != nil {
		return nil, err
	}
	paragraphs, err := extract.DOCXParagraphs(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return paragraphs, nil
}

func readPDF(path string) ([]string, error) {
	if err := statSource(path); err != nil {
		return nil, err
	}
	lines, err := extract.PDFLines(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return lines, nil
}

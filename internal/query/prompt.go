package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/docqa/internal/docindex"
)

// DefaultQuestion is asked when the user enters nothing.
const DefaultQuestion = "List all the files"

// BuildPrompt renders the indexes, one JSON document per line, followed by
// the question.
func BuildPrompt(indexes []*docindex.Index, question string) (string, error) {
	var b strings.Builder
	b.WriteString("You are an AI-powered document analyzer.\n\n")
	b.WriteString("Here are the indexed files:\n")

	for _, idx := range indexes {
		line, err := encodeLine(idx)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n\n", question)
	b.WriteString("Please provide a clear, concise answer based only on these files.")
	return b.String(), nil
}

func encodeLine(idx *docindex.Index) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(idx); err != nil {
		return "", fmt.Errorf("encode index %s: %w", idx.File, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

package docindex

import "strings"

// ChunkUnits groups consecutive units into chunks of size units each. The
// last chunk holds the remainder. A non-positive size means DefaultChunkSize.
// Chunks whose joined text is blank are dropped without consuming an id.
func ChunkUnits(units []string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := []Chunk{}
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		text := strings.TrimSpace(strings.Join(units[start:end], " "))
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			ID:        len(chunks),
			Text:      text,
			WordCount: countWords(text),
		})
	}
	return chunks
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// Package search runs keyword queries over persisted indexes with an
// in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/mwiater/docqa/internal/docindex"
)

// Kinds of searchable text.
const (
	KindChunk = "chunk"
	KindEntry = "entry"
)

const defaultLimit = 10

// document is the shape stored in bleve.
type document struct {
	File     string `json:"file"`
	Type     string `json:"type"`
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Hit is one matching chunk or entry.
type Hit struct {
	ID       string
	File     string
	Type     docindex.Format
	Kind     string
	Position int
	Text     string
	Score    float64
}

// Index is a searchable view over a set of document indexes.
type Index struct {
	index bleve.Index
	docs  int
}

// Build indexes every chunk and entry of indexes in memory.
func Build(indexes []*docindex.Index) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}

	batch := idx.NewBatch()
	count := 0
	add := func(id string, doc document) error {
		count++
		return batch.Index(id, doc)
	}
	for _, di := range indexes {
		for _, c := range di.Chunks {
			doc := document{File: di.File, Type: string(di.Type), Kind: KindChunk, Position: c.ID, Text: c.Text}
			if err := add(fmt.Sprintf("%s#chunk-%d", di.File, c.ID), doc); err != nil {
				idx.Close()
				return nil, fmt.Errorf("index chunk: %w", err)
			}
		}
		for i, entry := range di.Entries {
			doc := document{File: di.File, Type: string(di.Type), Kind: KindEntry, Position: i, Text: entry}
			if err := add(fmt.Sprintf("%s#entry-%d", di.File, i), doc); err != nil {
				idx.Close()
				return nil, fmt.Errorf("index entry: %w", err)
			}
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("write search index: %w", err)
	}
	return &Index{index: idx, docs: count}, nil
}

// Size returns the number of searchable documents.
func (i *Index) Size() int { return i.docs }

// Search runs a match query against the chunk and entry text. It returns the
// top hits and the total number of matches.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]Hit, uint64, error) {
	if strings.TrimSpace(query) == "" {
		return []Hit{}, 0, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	match := bleve.NewMatchQuery(query)
	match.SetField("text")
	req := bleve.NewSearchRequest(match)
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["file"].(string); ok {
			hit.File = v
		}
		if v, ok := h.Fields["type"].(string); ok {
			hit.Type = docindex.Format(v)
		}
		if v, ok := h.Fields["kind"].(string); ok {
			hit.Kind = v
		}
		if v, ok := h.Fields["position"].(float64); ok {
			hit.Position = int(v)
		}
		if v, ok := h.Fields["text"].(string); ok {
			hit.Text = v
		}
		hits = append(hits, hit)
	}
	return hits, res.Total, nil
}

// Close releases the bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}

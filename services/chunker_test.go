package services

import (
	"fmt"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChunkShortTextYieldsSingleChunk(t *testing.T) {
	ck := NewChunker(100, 10, 5)
	docID := primitive.NewObjectID()

	chunks := ck.Chunk(docID, "SAA", "a short document with only a handful of words")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Sequence != 0 {
		t.Errorf("expected sequence 0, got %d", chunks[0].Sequence)
	}
	if chunks[0].Certification != "SAA" {
		t.Errorf("expected certification SAA, got %s", chunks[0].Certification)
	}
}

func TestChunkEmptyText(t *testing.T) {
	ck := NewChunker(100, 10, 5)
	if chunks := ck.Chunk(primitive.NewObjectID(), "SAA", "   "); chunks != nil {
		t.Fatalf("expected nil for empty text, got %d chunks", len(chunks))
	}
}

func TestChunkCoversAllWordsInOrder(t *testing.T) {
	words := make([]string, 1234)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	ck := NewChunker(100, 15, 10)
	chunks := ck.Chunk(primitive.NewObjectID(), "DVA", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every source word appears in at least one chunk.
	covered := make(map[string]bool)
	for _, c := range chunks {
		for _, w := range strings.Fields(c.Text) {
			covered[w] = true
		}
	}
	for _, w := range words {
		if !covered[w] {
			t.Fatalf("word %s missing from all chunks", w)
		}
	}

	// Sequence numbers are dense and ordered.
	for i, c := range chunks {
		if c.Sequence != i {
			t.Errorf("chunk %d has sequence %d", i, c.Sequence)
		}
	}

	// Consecutive chunks share the configured overlap.
	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	if first[len(first)-15] != second[0] {
		t.Errorf("expected 15-word overlap, first chunk ends %v, second starts %v",
			first[len(first)-3:], second[:3])
	}
}

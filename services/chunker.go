package services

import (
	"strings"

	"certprep-platform/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chunker splits document text into overlapping word windows so no sentence
// is stranded on a chunk boundary without context.
type Chunker struct {
	maxChunkSize int // window size in words
	overlap      int // words shared between consecutive chunks
	minChunkSize int // windows shorter than this are folded into the previous chunk
}

func NewChunker(maxChunkSize, overlap, minChunkSize int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 || overlap >= maxChunkSize {
		overlap = maxChunkSize / 10
	}
	return &Chunker{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
		minChunkSize: minChunkSize,
	}
}

// Chunk produces ordered, overlapping chunks covering the full text. Text at
// or under the window size yields exactly one chunk. Every chunk carries the
// document's certification so retrieval can filter on it.
func (ck *Chunker) Chunk(documentID primitive.ObjectID, certification, text string) []models.ContentChunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []models.ContentChunk
	for i := 0; i < len(words); {
		end := i + ck.maxChunkSize
		if end > len(words) {
			end = len(words)
		}

		chunkText := strings.Join(words[i:end], " ")

		// A trailing sliver is appended to the previous chunk instead of
		// becoming a chunk of its own.
		if end-i < ck.minChunkSize && len(chunks) > 0 {
			last := &chunks[len(chunks)-1]
			overlapStart := i + ck.overlap
			if overlapStart > end {
				overlapStart = end
			}
			if overlapStart < end {
				last.Text = last.Text + " " + strings.Join(words[overlapStart:end], " ")
			}
			break
		}

		chunks = append(chunks, models.ContentChunk{
			ChunkID:       uuid.NewString(),
			DocumentID:    documentID,
			Sequence:      len(chunks),
			Text:          chunkText,
			Certification: certification,
			ContentType:   models.ContentTypeChunk,
		})

		if end >= len(words) {
			break
		}

		nextStart := end - ck.overlap
		if nextStart <= i {
			nextStart = i + 1
		}
		i = nextStart
	}

	return chunks
}

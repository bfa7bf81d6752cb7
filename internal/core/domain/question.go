package domain

import (
	"strconv"
	"strings"
	"time"
)

// Fixed responses returned without calling the generator.
const (
	// NoKnowledgeAnswer is returned when nothing has been indexed yet.
	NoKnowledgeAnswer = "No knowledge base available."

	// NoRelevantAnswer is returned when no retrieved slot resolves to a chunk.
	NoRelevantAnswer = "No relevant answer found."
)

// ScoredChunk is a retrieved chunk with its distance from the question.
type ScoredChunk struct {
	// Chunk is the retrieved passage.
	Chunk *Chunk

	// Document is the chunk's parent document.
	Document *Document

	// Slot is the vector index position the chunk was found at.
	Slot int

	// Distance is the squared Euclidean distance to the question embedding.
	Distance float64

	// Similarity is 1 - Distance. It is not a normalised score.
	Similarity float64
}

// Citation formats the chunk as "<document reference> - Page <n>".
func (s ScoredChunk) Citation() string {
	return FormatCitation(s.Document.Reference(), s.Chunk.PageNumber)
}

// Answer is the outcome of asking a question.
type Answer struct {
	// Question is the question as asked.
	Question string

	// Text is the generated answer, or one of the fixed responses.
	Text string

	// Citations lists sources in retrieval order.
	Citations []string

	// Sources holds the retrieved chunks behind the answer.
	Sources []ScoredChunk

	// NoKnowledge is true when the knowledge base was empty.
	NoKnowledge bool
}

// QuestionLog records one answered question.
// It is written once and never read back by the retrieval pipeline.
type QuestionLog struct {
	// ID is the unique identifier for the log entry.
	ID string

	// Question is the question text.
	Question string

	// Answer is the generated answer text.
	Answer string

	// Sources is the comma-joined list of citations.
	Sources string

	// CreatedAt is when the question was answered.
	CreatedAt time.Time
}

// FormatCitation builds a citation label.
func FormatCitation(reference string, page int) string {
	return reference + " - Page " + strconv.Itoa(page)
}

// JoinCitations joins citations the way QuestionLog.Sources stores them.
func JoinCitations(citations []string) string {
	return strings.Join(citations, ", ")
}

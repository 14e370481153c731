package domain

import "time"

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending indicates the document is registered but not yet processed.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing indicates ingestion is in flight.
	StatusProcessing DocumentStatus = "processing"

	// StatusReady indicates chunks (and embeddings, if requested) are committed.
	StatusReady DocumentStatus = "ready"

	// StatusFailed indicates ingestion failed and no chunk rows remain.
	StatusFailed DocumentStatus = "failed"
)

// Document represents a registered PDF document.
// Identity for caching purposes is the content hash, never the path,
// so renamed or duplicated files still hit the cache.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the local filesystem location of the PDF.
	Path string

	// ContentHash is the SHA-256 digest of the file bytes.
	ContentHash string

	// Title is the human-readable title, taken from PDF metadata
	// or the file name when metadata is absent.
	Title string

	// PageCount is the number of pages reported by the parser.
	PageCount int

	// Status is the current ingestion state.
	Status DocumentStatus

	// ChunkCount is the number of committed chunks.
	ChunkCount int

	// Strategy is the chunking strategy used for the committed chunks.
	Strategy string

	// CreatedAt is when the document was first registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last (re)processed.
	UpdatedAt time.Time
}

// PageDimensions holds the media box size of a page in PDF points.
type PageDimensions struct {
	Width  float64
	Height float64
}

// Page is one page of extracted, cleaned text.
// Produced once per parse and immutable afterwards.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Index is the 0-based page index.
	Index int

	// Text is the cleaned page text.
	Text string

	// CharCount is the character count of Text (runes).
	CharCount int

	// WordCount is the whitespace-delimited word count of Text.
	WordCount int

	// Dimensions is the page media box, when the engine reports one.
	Dimensions PageDimensions
}

// ChunkType classifies how a chunk was derived.
type ChunkType string

// Chunk classifications.
const (
	// ChunkTypeText is a plain text chunk from a size- or
	// separator-driven strategy.
	ChunkTypeText ChunkType = "text"

	// ChunkTypeChapter is a chunk spanning a detected chapter.
	ChunkTypeChapter ChunkType = "chapter"

	// ChunkTypeSection is a chunk spanning a detected section.
	ChunkTypeSection ChunkType = "section"
)

// Chunk is the central retrieval unit. One chunking strategy produces
// an ordered run of chunks per document; Index is dense from 0 within
// a run and follows document reading order.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within one chunking run.
	Index int

	// Text is the chunk content.
	Text string

	// CharCount is the rune count of Text.
	CharCount int

	// WordCount is the whitespace-delimited word count of Text.
	WordCount int

	// StartPage is the first contributing page (1-based).
	// Invariant: StartPage <= EndPage.
	StartPage int

	// EndPage is the last contributing page (1-based).
	EndPage int

	// PageNumbers lists every contributing page, ascending.
	PageNumbers []int

	// Type classifies how the chunk was derived.
	Type ChunkType

	// HeadingNumber is the detected heading enumeration ("3.2"),
	// empty for non-heading chunks.
	HeadingNumber string

	// HeadingTitle is the detected heading title, empty for
	// non-heading chunks.
	HeadingTitle string

	// HasCode indicates embedded code was detected.
	HasCode bool

	// CodeBlockCount is the number of detected code blocks.
	CodeBlockCount int

	// Embedding is the L2-normalised vector representation.
	// Nil until the embedding step has run.
	Embedding []float32

	// Metadata contains strategy-specific key-value pairs.
	Metadata map[string]any
}

// IsValid reports whether t is a recognised chunk type.
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkTypeText, ChunkTypeChapter, ChunkTypeSection:
		return true
	default:
		return false
	}
}

// Package chunking provides the document chunking strategies.
//
// Five base strategies (fixed, paragraph, sentence, pagemerge, heading)
// plus the hybrid composite are registered by name in a Registry and
// selected at ingest time. Every strategy implements the same
// driven.ChunkStrategy interface and returns the same chunk shape with
// page-range metadata.
//
// Heading detection is an ordered list of regular expression families
// with a post-hoc dedup pass. It is best-effort: numbered lists that
// look like section headers can mis-match, and the sentence boundary
// patterns can mis-split abbreviations. Strategies guarantee at least
// one chunk for non-empty input via fallback, never silent emptiness.
package chunking

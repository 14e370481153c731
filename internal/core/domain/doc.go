// Package domain defines the core business entities for docq.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A registered PDF document
//   - Page: One page of extracted, cleaned text
//   - Chunk: A retrieval unit produced by a chunking strategy
//   - RetrievalResult: One vector search hit
//   - Answer: A grounded answer with attributed sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

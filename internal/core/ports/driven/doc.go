// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentParser: Extracts text and geometry from a PDF
//   - ContentCache: Content-hash-keyed artifact cache
//   - DocumentStore: Document and chunk persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it the
//     ingest pipeline stores chunks only and answering is disabled.
//   - VectorIndex: Vector storage/search. Only enabled when an
//     EmbeddingService is configured.
//   - LLMService: Answer synthesis. Without it questions cannot be answered.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or chunking package
package driven

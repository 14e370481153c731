package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend identifies where chunk vectors are indexed.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory keeps the index in process memory. Vectors
	// are rebuilt from stored chunk rows on startup.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendQdrant indexes vectors in a Qdrant server.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// VectorSettings holds vector index configuration.
type VectorSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// URL is the Qdrant server address (qdrant backend only).
	URL string

	// Collection is the Qdrant collection name (qdrant backend only).
	Collection string
}

// IngestSettings holds document ingestion configuration.
type IngestSettings struct {
	// Engine is the preferred parse engine name.
	Engine string

	// Strategy is the default chunking strategy name.
	Strategy string

	// PageLimit caps the page count of accepted documents; zero means
	// no limit.
	PageLimit int
}

// ChunkSettings holds the tunables shared by all chunking strategies.
// Zero values select strategy defaults.
type ChunkSettings struct {
	// ChunkSize is the target chunk length in runes.
	ChunkSize int

	// Overlap is the number of runes repeated between consecutive
	// fixed-size chunks.
	Overlap int

	// MinChunkSize is the length below which a paragraph-packed chunk
	// is discarded.
	MinChunkSize int

	// KeepShortTail keeps trailing fragments shorter than MinChunkSize
	// instead of dropping them.
	KeepShortTail bool

	// SentencesPerChunk is the sentence count per chunk for the
	// sentence strategy.
	SentencesPerChunk int

	// MinPageChars is the minimum accumulated text length for the
	// pagemerge strategy before a chunk is emitted.
	MinPageChars int

	// MinSectionLength is the length below which a heading-derived
	// chunk is discarded as a false positive.
	MinSectionLength int
}

// AskSettings holds question answering configuration.
type AskSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Language is the default answer language code.
	Language Language
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Vector holds vector index settings.
	Vector VectorSettings

	// Ingest holds document ingestion settings.
	Ingest IngestSettings

	// Chunk holds chunking tunables applied to every strategy.
	Chunk ChunkSettings

	// Ask holds question answering settings.
	Ask AskSettings
}

// DefaultAppSettings returns settings with sensible defaults. The AI
// providers default to a local Ollama instance so the tool works
// without credentials; cloud providers are opted into via config.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    "llama3.2",
		},
		Vector: VectorSettings{
			Backend: VectorBackendMemory,
		},
		Ingest: IngestSettings{
			Engine:   "native",
			Strategy: "hybrid",
		},
		Ask: AskSettings{
			TopK:     5,
			Language: LanguageEnglish,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

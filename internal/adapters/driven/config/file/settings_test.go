package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

func storeWithConfig(t *testing.T, content string) *ConfigStore {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store
}

func TestLoadSettings_Defaults(t *testing.T) {
	store := storeWithConfig(t, "")

	settings := LoadSettings(store)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, domain.VectorBackendMemory, settings.Vector.Backend)
	assert.Equal(t, "native", settings.Ingest.Engine)
	assert.Equal(t, "hybrid", settings.Ingest.Strategy)
	assert.Zero(t, settings.Ingest.PageLimit)
	assert.Equal(t, 5, settings.Ask.TopK)
	assert.Equal(t, domain.LanguageEnglish, settings.Ask.Language)
}

func TestLoadSettings_FullConfig(t *testing.T) {
	store := storeWithConfig(t, `
[embedding]
provider = "openai"
model = "text-embedding-3-large"
api_key = "sk-test"

[llm]
provider = "anthropic"
api_key = "sk-ant-test"

[vector]
backend = "qdrant"
url = "http://qdrant.internal:6333"
collection = "manuals"

[ingest]
engine = "poppler"
strategy = "heading"
page_limit = 500

[chunk]
size = 1500
overlap = 300
keep_short_tail = true

[ask]
top_k = 8
language = "zh"
`)

	settings := LoadSettings(store)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.True(t, settings.Embedding.IsConfigured())

	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	// No explicit model: the provider default applies.
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)

	assert.Equal(t, domain.VectorBackendQdrant, settings.Vector.Backend)
	assert.Equal(t, "http://qdrant.internal:6333", settings.Vector.URL)
	assert.Equal(t, "manuals", settings.Vector.Collection)

	assert.Equal(t, "poppler", settings.Ingest.Engine)
	assert.Equal(t, "heading", settings.Ingest.Strategy)
	assert.Equal(t, 500, settings.Ingest.PageLimit)

	assert.Equal(t, 1500, settings.Chunk.ChunkSize)
	assert.Equal(t, 300, settings.Chunk.Overlap)
	assert.True(t, settings.Chunk.KeepShortTail)

	assert.Equal(t, 8, settings.Ask.TopK)
	assert.Equal(t, domain.LanguageChinese, settings.Ask.Language)
}

func TestLoadSettings_ProviderSwitchResetsModel(t *testing.T) {
	store := storeWithConfig(t, `
[embedding]
provider = "openai"
api_key = "sk-test"
`)

	settings := LoadSettings(store)

	// The Ollama default model must not leak onto the OpenAI provider.
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
}

func TestChunkConfig_Mapping(t *testing.T) {
	cfg := ChunkConfig(domain.ChunkSettings{
		ChunkSize:         800,
		Overlap:           100,
		MinChunkSize:      50,
		KeepShortTail:     true,
		SentencesPerChunk: 3,
		MinPageChars:      150,
		MinSectionLength:  25,
	})

	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.Overlap)
	assert.Equal(t, 50, cfg.MinChunkSize)
	assert.True(t, cfg.KeepShortTail)
	assert.Equal(t, 3, cfg.SentencesPerChunk)
	assert.Equal(t, 150, cfg.MinPageChars)
	assert.Equal(t, 25, cfg.MinSectionLength)
}

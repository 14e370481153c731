package file

import (
	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
)

// LoadSettings maps the raw configuration onto typed application
// settings. Unset keys keep the defaults from DefaultAppSettings, so a
// missing or empty config file yields a working local setup.
func LoadSettings(store driven.ConfigStore) domain.AppSettings {
	settings := domain.DefaultAppSettings()

	if v := store.GetString("embedding.provider"); v != "" {
		settings.Embedding.Provider = domain.AIProvider(v)
		// Switching provider resets the model to that provider's
		// default unless one is named explicitly.
		if m, ok := domain.DefaultEmbeddingModels()[settings.Embedding.Provider]; ok {
			settings.Embedding.Model = m
		}
	}
	if v := store.GetString("embedding.model"); v != "" {
		settings.Embedding.Model = v
	}
	if v := store.GetString("embedding.base_url"); v != "" {
		settings.Embedding.BaseURL = v
	}
	if v := store.GetString("embedding.api_key"); v != "" {
		settings.Embedding.APIKey = v
	}

	if v := store.GetString("llm.provider"); v != "" {
		settings.LLM.Provider = domain.AIProvider(v)
		if m, ok := domain.DefaultLLMModels()[settings.LLM.Provider]; ok {
			settings.LLM.Model = m
		}
	}
	if v := store.GetString("llm.model"); v != "" {
		settings.LLM.Model = v
	}
	if v := store.GetString("llm.base_url"); v != "" {
		settings.LLM.BaseURL = v
	}
	if v := store.GetString("llm.api_key"); v != "" {
		settings.LLM.APIKey = v
	}

	if v := store.GetString("vector.backend"); v != "" {
		settings.Vector.Backend = domain.VectorBackend(v)
	}
	if v := store.GetString("vector.url"); v != "" {
		settings.Vector.URL = v
	}
	if v := store.GetString("vector.collection"); v != "" {
		settings.Vector.Collection = v
	}

	if v := store.GetString("ingest.engine"); v != "" {
		settings.Ingest.Engine = v
	}
	if v := store.GetString("ingest.strategy"); v != "" {
		settings.Ingest.Strategy = v
	}
	if v := store.GetInt("ingest.page_limit"); v > 0 {
		settings.Ingest.PageLimit = v
	}

	if v := store.GetInt("chunk.size"); v > 0 {
		settings.Chunk.ChunkSize = v
	}
	if v := store.GetInt("chunk.overlap"); v > 0 {
		settings.Chunk.Overlap = v
	}
	if v := store.GetInt("chunk.min_size"); v > 0 {
		settings.Chunk.MinChunkSize = v
	}
	if v := store.GetBool("chunk.keep_short_tail"); v {
		settings.Chunk.KeepShortTail = true
	}
	if v := store.GetInt("chunk.sentences_per_chunk"); v > 0 {
		settings.Chunk.SentencesPerChunk = v
	}
	if v := store.GetInt("chunk.min_page_chars"); v > 0 {
		settings.Chunk.MinPageChars = v
	}
	if v := store.GetInt("chunk.min_section_length"); v > 0 {
		settings.Chunk.MinSectionLength = v
	}

	if v := store.GetInt("ask.top_k"); v > 0 {
		settings.Ask.TopK = v
	}
	if v := store.GetString("ask.language"); v != "" {
		settings.Ask.Language = domain.Language(v)
	}

	return settings
}

// ChunkConfig converts chunk settings into the config shape the
// chunking strategies consume.
func ChunkConfig(settings domain.ChunkSettings) driven.ChunkConfig {
	return driven.ChunkConfig{
		ChunkSize:         settings.ChunkSize,
		Overlap:           settings.Overlap,
		MinChunkSize:      settings.MinChunkSize,
		KeepShortTail:     settings.KeepShortTail,
		SentencesPerChunk: settings.SentencesPerChunk,
		MinPageChars:      settings.MinPageChars,
		MinSectionLength:  settings.MinSectionLength,
	}
}

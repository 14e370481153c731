package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	storagemem "github.com/archivist-labs/docq-cli/internal/adapters/driven/storage/memory"
	"github.com/archivist-labs/docq-cli/internal/core/domain"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driven"
	"github.com/archivist-labs/docq-cli/internal/core/ports/driving"
)

// fakeIngestService records calls and returns canned results.
type fakeIngestService struct {
	result    *driving.ProcessResult
	err       error
	processed []string
	removed   []string
	removeErr error
}

func (f *fakeIngestService) ProcessDocument(_ context.Context, path, _ string, _ bool) (*driving.ProcessResult, error) {
	f.processed = append(f.processed, path)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeIngestService) Remove(_ context.Context, documentID string) error {
	f.removed = append(f.removed, documentID)
	return f.removeErr
}

// fakeAskService returns a canned answer.
type fakeAskService struct {
	answer  *domain.Answer
	err     error
	lastReq driving.AskRequest
}

func (f *fakeAskService) Answer(_ context.Context, req driving.AskRequest) (*domain.Answer, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

// withFakeServices swaps the package wiring for test doubles and
// restores it afterwards, so initStorage and friends become no-ops.
func withFakeServices(t *testing.T) {
	t.Helper()

	prevDocs := documentStore
	prevCache := contentCache
	prevConfig := configStore
	prevIngest := ingestService
	prevAsk := askService
	prevSettings := appSettings

	documentStore = storagemem.NewDocumentStore()
	contentCache = storagemem.NewContentCache()
	configStore = storagemem.NewConfigStore()
	appSettings = domain.DefaultAppSettings()
	resetFlags()

	t.Cleanup(func() {
		documentStore = prevDocs
		contentCache = prevCache
		configStore = prevConfig
		ingestService = prevIngest
		askService = prevAsk
		appSettings = prevSettings
		resetFlags()
	})
}

// resetFlags clears command flag state left over from earlier runs.
// Cobra flag variables are package-level and persist between Execute calls.
func resetFlags() {
	verbose = false
	ingestStrategy = ""
	ingestNoEmbed = false
	askDocumentID = ""
	askTopK = 0
	askLanguage = ""
	askTemperature = 0
	watchStrategy = ""
}

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func seedDocument(t *testing.T, id string) *domain.Document {
	t.Helper()

	doc := &domain.Document{
		ID:          id,
		Path:        "/tmp/" + id + ".pdf",
		ContentHash: "hash-" + id,
		Title:       "Manual " + id,
		PageCount:   10,
		Status:      domain.StatusReady,
		ChunkCount:  4,
		Strategy:    "page",
	}
	require.NoError(t, documentStore.SaveDocument(context.Background(), doc))
	return doc
}

var _ driving.IngestService = (*fakeIngestService)(nil)
var _ driving.AskService = (*fakeAskService)(nil)
var _ driven.DocumentStore = (*storagemem.DocumentStore)(nil)

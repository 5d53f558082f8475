package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

type fakeInvoker struct {
	ops     []services.OperationInfo
	listErr error
	lists   int
	results map[string]*services.InvokeResult
	calls   []invocation
}

type invocation struct {
	op   string
	args map[string]interface{}
}

func (f *fakeInvoker) ListOperations(context.Context) ([]services.OperationInfo, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ops, nil
}

func (f *fakeInvoker) Invoke(_ context.Context, op string, args map[string]interface{}) (*services.InvokeResult, error) {
	f.calls = append(f.calls, invocation{op: op, args: args})
	if r, ok := f.results[op]; ok {
		return r, nil
	}
	return &services.InvokeResult{Text: `{"ok": true}`}, nil
}

type stubSync struct {
	dir        string
	pulled     []string
	pushed     []string
	pushErr    error
	notWritten bool
}

func (s *stubSync) ResolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *stubSync) PullIfStale(_ context.Context, absPath string) error {
	s.pulled = append(s.pulled, absPath)
	return nil
}

func (s *stubSync) Push(_ context.Context, absPath string) (*models.RemoteCopy, error) {
	s.pushed = append(s.pushed, absPath)
	if s.pushErr != nil {
		return nil, s.pushErr
	}
	return &models.RemoteCopy{
		Filename:      filepath.Base(absPath),
		RemoteID:      "remote-1",
		ShareableLink: "https://drive.example/remote-1",
	}, nil
}

func (s *stubSync) AwaitMaterialization(context.Context, string, time.Duration, time.Duration) bool {
	return !s.notWritten
}

func (s *stubSync) OutputDir() string { return s.dir }

// stubDrafts answers every draft call with one fixed view.
type stubDrafts struct {
	view      *services.DraftView
	generated []uuid.UUID
	updated   []*services.UpdateDraftRequest
}

func newStubDrafts() *stubDrafts {
	return &stubDrafts{view: &services.DraftView{
		Draft: models.Draft{
			ID:     uuid.New(),
			Title:  "Remote Work Policy",
			Status: models.DraftStatusDraft,
			Content: models.ParsedContent{Sections: []models.Section{
				{Title: "Purpose", Body: "All staff may work remotely."},
			}},
		},
		AbsolutePath: "/out/Remote_Work_Policy.docx",
		FileExists:   true,
	}}
}

func (d *stubDrafts) Create(context.Context, *services.CreateDraftRequest) (*services.DraftView, error) {
	return d.view, nil
}

func (d *stubDrafts) Get(context.Context, uuid.UUID) (*services.DraftView, error) {
	return d.view, nil
}

func (d *stubDrafts) List(context.Context, int) ([]models.Draft, error) {
	return []models.Draft{d.view.Draft}, nil
}

func (d *stubDrafts) Update(_ context.Context, _ uuid.UUID, req *services.UpdateDraftRequest, _ string) (*services.DraftView, error) {
	d.updated = append(d.updated, req)
	return d.view, nil
}

func (d *stubDrafts) Generate(_ context.Context, id uuid.UUID) (*services.DraftView, error) {
	d.generated = append(d.generated, id)
	return d.view, nil
}

func (d *stubDrafts) Publish(context.Context, uuid.UUID) (*services.PublishResult, error) {
	return &services.PublishResult{Draft: d.view}, nil
}

func (d *stubDrafts) AcceptExternalSave(context.Context, uuid.UUID, []byte, string) error {
	return nil
}

func (d *stubDrafts) Refresh(context.Context, uuid.UUID) (*services.DraftView, error) {
	return d.view, nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	invoker    *fakeInvoker
	sync       *stubSync
	drafts     *stubDrafts
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	policy, err := catalog.NewRegistry()
	require.NoError(t, err)

	f := &dispatcherFixture{
		invoker: &fakeInvoker{
			ops: []services.OperationInfo{
				{
					Name:        "edit_document",
					Description: "Edit a document",
					InputSchema: map[string]interface{}{"filename": map[string]interface{}{"type": "string"}},
					Required:    []string{"filename"},
				},
				{Name: "get_document_info", Description: "Describe a document"},
				{Name: "get_draft", Description: "Renderer operation with a clashing name"},
			},
			results: map[string]*services.InvokeResult{},
		},
		sync:   &stubSync{dir: t.TempDir()},
		drafts: newStubDrafts(),
	}

	f.dispatcher = NewToolRegistryBuilder(policy).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithDraftTools(f.drafts).
		WithRenderer(f.invoker, f.sync).
		BuildDispatcher()
	return f
}

func errorBody(t *testing.T, r ToolResult) map[string]interface{} {
	t.Helper()
	require.True(t, r.IsError, "expected an error result, got %+v", r.Result)
	payload, ok := r.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, payload["success"])
	body, ok := payload["error"].(map[string]interface{})
	require.True(t, ok)
	return body
}

func successBody(t *testing.T, r ToolResult) map[string]interface{} {
	t.Helper()
	require.False(t, r.IsError, "unexpected error result: %v", r.Error)
	payload, ok := r.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, payload["success"])
	return payload
}

func TestDispatcher_Definitions(t *testing.T) {
	f := newDispatcherFixture(t)

	defs := f.dispatcher.Definitions(context.Background())

	var names []string
	for _, def := range defs {
		require.NoError(t, def.Validate())
		names = append(names, def.Name())
	}
	assert.Equal(t, []string{
		ToolCreateDraft, ToolGetDraft, ToolUpdateDraft, ToolGenerateFromDraft,
		"edit_document", "get_document_info",
	}, names)

	edit := defs[4]
	assert.Equal(t, []string{"filename"}, edit.Required())
	assert.Contains(t, edit.Properties(), "filename")
	assert.NotNil(t, defs[5].Properties(), "operation without a schema still gets an object schema")

	f.dispatcher.Definitions(context.Background())
	assert.Equal(t, 1, f.invoker.lists, "operations are listed once")
}

func TestDispatcher_ListingFailureIsRetried(t *testing.T) {
	f := newDispatcherFixture(t)
	f.invoker.listErr = errors.New("renderer not started")

	assert.Len(t, f.dispatcher.Definitions(context.Background()), 4)

	f.invoker.listErr = nil
	assert.Len(t, f.dispatcher.Definitions(context.Background()), 6)
	assert.Equal(t, 2, f.invoker.lists)
}

func TestDispatcher_ExecuteAll(t *testing.T) {
	draftID := uuid.New().String()

	tests := []struct {
		name  string
		setup func(f *dispatcherFixture)
		call  llm.ToolCall
		check func(t *testing.T, f *dispatcherFixture, r ToolResult)
	}{
		{
			name: "malformed draft arguments",
			call: llm.ToolCall{ID: "c1", Name: ToolUpdateDraft, Input: map[string]interface{}{"draft_id": "not-a-uuid"}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				assert.Equal(t, CodeMalformedArguments, errorBody(t, r)["code"])
				assert.Empty(t, f.drafts.updated)
			},
		},
		{
			name: "unknown argument is rejected",
			call: llm.ToolCall{ID: "c1", Name: ToolGetDraft, Input: map[string]interface{}{"draft_id": draftID, "verbose": true}},
			check: func(t *testing.T, _ *dispatcherFixture, r ToolResult) {
				assert.Equal(t, CodeMalformedArguments, errorBody(t, r)["code"])
			},
		},
		{
			name: "unknown operation",
			call: llm.ToolCall{ID: "c1", Name: "delete_everything"},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				assert.Equal(t, CodeUnknownOperation, errorBody(t, r)["code"])
				assert.Empty(t, f.invoker.calls)
			},
		},
		{
			name: "alias routes to generate",
			call: llm.ToolCall{ID: "c1", Name: "generate_document_from_draft", Input: map[string]interface{}{"draft_id": draftID}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				body := successBody(t, r)
				assert.Equal(t, "Document generated.", body["message"])
				require.Len(t, f.drafts.generated, 1)
				assert.Equal(t, draftID, f.drafts.generated[0].String())
			},
		},
		{
			name: "draft tool wins over clashing renderer operation",
			call: llm.ToolCall{ID: "c1", Name: ToolGetDraft, Input: map[string]interface{}{"draft_id": draftID}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				body := successBody(t, r)
				assert.Contains(t, body["content"], "# Purpose")
				assert.Empty(t, f.invoker.calls)
			},
		},
		{
			name: "mutating operation pulls then pushes",
			call: llm.ToolCall{ID: "c1", Name: "edit_document", Input: map[string]interface{}{"filename": "policy.docx", "text": "x"}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				body := successBody(t, r)
				abs := filepath.Join(f.sync.dir, "policy.docx")

				assert.Equal(t, []string{abs}, f.sync.pulled)
				require.Len(t, f.invoker.calls, 1)
				assert.Equal(t, abs, f.invoker.calls[0].args["filename"], "renderer receives the resolved path")
				assert.Equal(t, []string{abs}, f.sync.pushed)
				assert.Equal(t, abs, body["output_path"])
				assert.Equal(t, "https://drive.example/remote-1", body["shareable_link"])
				assert.Equal(t, map[string]interface{}{"ok": true}, body["result"])
			},
		},
		{
			name: "read-only operation is not pushed",
			call: llm.ToolCall{ID: "c1", Name: "get_document_info", Input: map[string]interface{}{"filename": "policy.docx"}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				successBody(t, r)
				assert.Len(t, f.sync.pulled, 1)
				assert.Empty(t, f.sync.pushed)
			},
		},
		{
			name: "empty file key is malformed",
			call: llm.ToolCall{ID: "c1", Name: "edit_document", Input: map[string]interface{}{"filename": ""}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				assert.Equal(t, CodeMalformedArguments, errorBody(t, r)["code"])
				assert.Empty(t, f.invoker.calls)
			},
		},
		{
			name: "locked push fails the call with remediation",
			setup: func(f *dispatcherFixture) {
				f.sync.pushErr = &domain.DocumentLockedError{Filename: "policy.docx", Attempts: 3}
			},
			call: llm.ToolCall{ID: "c1", Name: "edit_document", Input: map[string]interface{}{"filename": "policy.docx"}},
			check: func(t *testing.T, _ *dispatcherFixture, r ToolResult) {
				body := errorBody(t, r)
				assert.Equal(t, CodeDocumentLocked, body["code"])
				assert.Contains(t, body["remediation"], "policy.docx")
			},
		},
		{
			name: "other push failure is a warning",
			setup: func(f *dispatcherFixture) {
				f.sync.pushErr = domain.ErrRemoteUnavailable
			},
			call: llm.ToolCall{ID: "c1", Name: "edit_document", Input: map[string]interface{}{"filename": "policy.docx"}},
			check: func(t *testing.T, _ *dispatcherFixture, r ToolResult) {
				body := successBody(t, r)
				assert.Contains(t, body["sync_warning"], "remote storage unavailable")
				assert.NotContains(t, body, "shareable_link")
			},
		},
		{
			name: "output path found in result text",
			setup: func(f *dispatcherFixture) {
				f.invoker.results["create_word_document"] = &services.InvokeResult{Text: "Document saved to /tmp/out/report.docx"}
				f.invoker.ops = append(f.invoker.ops, services.OperationInfo{Name: "create_word_document"})
			},
			call: llm.ToolCall{ID: "c1", Name: "create_word_document", Input: map[string]interface{}{"title": "Report"}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				body := successBody(t, r)
				assert.Equal(t, "/tmp/out/report.docx", body["output_path"])
				assert.Equal(t, []string{"/tmp/out/report.docx"}, f.sync.pushed)
			},
		},
		{
			name: "output that never appears is not pushed",
			setup: func(f *dispatcherFixture) {
				f.sync.notWritten = true
			},
			call: llm.ToolCall{ID: "c1", Name: "edit_document", Input: map[string]interface{}{"filename": "policy.docx"}},
			check: func(t *testing.T, f *dispatcherFixture, r ToolResult) {
				body := successBody(t, r)
				assert.Contains(t, body, "sync_warning")
				assert.Empty(t, f.sync.pushed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatcherFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			results := f.dispatcher.ExecuteAll(context.Background(), []llm.ToolCall{tt.call})

			require.Len(t, results, 1)
			assert.Equal(t, tt.call.ID, results[0].ID)
			tt.check(t, f, results[0])
		})
	}
}

func TestDispatcher_ExecuteAllKeepsOrder(t *testing.T) {
	f := newDispatcherFixture(t)
	draftID := uuid.New().String()

	calls := []llm.ToolCall{
		{ID: "a", Name: ToolGetDraft, Input: map[string]interface{}{"draft_id": draftID}},
		{ID: "b", Name: "nope"},
		{ID: "c", Name: "get_document_info", Input: map[string]interface{}{"path": "policy.docx"}},
		{ID: "d", Name: ToolUpdateDraft, Input: map[string]interface{}{"draft_id": draftID, "content": "# Scope\n\nEveryone."}},
	}

	results := f.dispatcher.ExecuteAll(context.Background(), calls)

	require.Len(t, results, len(calls))
	for i, r := range results {
		assert.Equal(t, calls[i].ID, r.ID)
		assert.Equal(t, calls[i].Name, r.Name)
	}
	assert.True(t, results[1].IsError)
	assert.False(t, results[3].IsError)
	require.Len(t, f.drafts.updated, 1)
	assert.True(t, strings.HasPrefix(*f.drafts.updated[0].Content, "# Scope"))
	assert.Equal(t, "markdown", f.drafts.updated[0].Format)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	llmSvc "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

// ---- fakes ----

type fakeDrafts struct {
	views       map[uuid.UUID]*services.DraftView
	err         error
	listLimit   int
	created     *services.CreateDraftRequest
	updateActor string
	refreshed   []uuid.UUID
	refreshErr  error
}

func (f *fakeDrafts) Create(_ context.Context, req *services.CreateDraftRequest) (*services.DraftView, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &services.DraftView{Draft: models.Draft{ID: uuid.New(), Title: req.Title, Status: models.DraftStatusGenerated}}, nil
}

func (f *fakeDrafts) Get(_ context.Context, id uuid.UUID) (*services.DraftView, error) {
	if f.err != nil {
		return nil, f.err
	}
	view, ok := f.views[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, domain.ErrNotFound)
	}
	return view, nil
}

func (f *fakeDrafts) List(_ context.Context, limit int) ([]models.Draft, error) {
	f.listLimit = limit
	return nil, f.err
}

func (f *fakeDrafts) Update(ctx context.Context, id uuid.UUID, _ *services.UpdateDraftRequest, actor string) (*services.DraftView, error) {
	f.updateActor = actor
	return f.Get(ctx, id)
}

func (f *fakeDrafts) Generate(ctx context.Context, id uuid.UUID) (*services.DraftView, error) {
	return f.Get(ctx, id)
}

func (f *fakeDrafts) Publish(ctx context.Context, id uuid.UUID) (*services.PublishResult, error) {
	view, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &services.PublishResult{Draft: view, RemoteCopy: &models.RemoteCopy{RemoteID: "remote-1"}}, nil
}

func (f *fakeDrafts) AcceptExternalSave(context.Context, uuid.UUID, []byte, string) error {
	return f.err
}

func (f *fakeDrafts) Refresh(ctx context.Context, id uuid.UUID) (*services.DraftView, error) {
	view, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Status != models.DraftStatusPublished {
		return view, nil
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.refreshed = append(f.refreshed, id)
	return view, nil
}

type fakeChat struct {
	resp *llmSvc.ChatResponse
	err  error
	got  *llmSvc.ChatRequest
}

func (f *fakeChat) HandleMessage(_ context.Context, req *llmSvc.ChatRequest) (*llmSvc.ChatResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeEditor struct {
	user      services.EditorUser
	callback  *services.EditorCallback
	available bool
}

func (f *fakeEditor) Config(_ context.Context, id uuid.UUID, user services.EditorUser) (*services.EditorConfig, error) {
	f.user = user
	return &services.EditorConfig{Document: services.EditorDocument{Key: "key-" + id.String()[:8]}}, nil
}
func (f *fakeEditor) ServerURL() string { return "http://office.local" }
func (f *fakeEditor) HandleCallback(_ context.Context, _ uuid.UUID, req *services.EditorCallback) services.EditorCallbackResult {
	f.callback = req
	return services.EditorCallbackResult{}
}
func (f *fakeEditor) Available(context.Context) bool { return f.available }

type fakeCopies struct {
	copies []models.RemoteCopy
	err    error
}

func (f *fakeCopies) List(context.Context) ([]models.RemoteCopy, error) { return f.copies, f.err }

// ---- fixture ----

type fixture struct {
	drafts *fakeDrafts
	chat   *fakeChat
	editor *fakeEditor
	copies *fakeCopies
	mux    *http.ServeMux
}

func newFixture(t *testing.T, chatConfigured bool) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		drafts: &fakeDrafts{views: map[uuid.UUID]*services.DraftView{}},
		chat:   &fakeChat{},
		editor: &fakeEditor{},
		copies: &fakeCopies{},
		mux:    http.NewServeMux(),
	}

	var chat llmSvc.ChatService
	if chatConfigured {
		chat = f.chat
	}

	h := &Handlers{
		Chat:      NewChatHandler(chat, logger),
		Drafts:    NewDraftHandler(f.drafts, logger),
		Documents: NewDocumentHandler(f.copies, logger),
		Editor:    NewEditorHandler(f.editor, f.drafts, logger),
	}
	h.Register(f.mux)
	return f
}

func (f *fixture) addDraft(t *testing.T, status models.DraftStatus, fileContent string) *services.DraftView {
	t.Helper()
	id := uuid.New()
	path := filepath.Join(t.TempDir(), "Policy-"+id.String()[:8]+".docx")
	if fileContent != "" {
		if err := os.WriteFile(path, []byte(fileContent), 0o644); err != nil {
			t.Fatalf("write draft file: %v", err)
		}
	}
	view := &services.DraftView{
		Draft:        models.Draft{ID: id, Title: "Policy", Status: status},
		AbsolutePath: path,
		FileExists:   fileContent != "",
	}
	f.drafts.views[id] = view
	return view
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	return f.doRequest(httptest.NewRequest(method, target, strings.NewReader(body)))
}

func (f *fixture) doRequest(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

// ---- tests ----

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %v, want ok", got)
	}
}

func TestChat(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		f := newFixture(t, false)
		rec := f.do(http.MethodPost, "/api/chat", `{"message":"hi"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("answer", func(t *testing.T) {
		f := newFixture(t, true)
		draftID := uuid.New()
		f.chat.resp = &llmSvc.ChatResponse{Response: "Done.", DraftUpdated: true, DraftID: &draftID}

		rec := f.do(http.MethodPost, "/api/chat",
			fmt.Sprintf(`{"message":"add a section","active_draft_id":%q,"editor_content":"# Scope"}`, draftID))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		body := decode(t, rec)
		if body["response"] != "Done." || body["draft_updated"] != true || body["draft_id"] != draftID.String() {
			t.Errorf("body = %v", body)
		}
		if f.chat.got.ActiveDraftID == nil || *f.chat.got.ActiveDraftID != draftID || f.chat.got.EditorContent != "# Scope" {
			t.Errorf("request = %+v", f.chat.got)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		f := newFixture(t, true)
		rec := f.do(http.MethodPost, "/api/chat", `{"message":"hi","history":[]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		f := newFixture(t, true)
		f.chat.err = fmt.Errorf("%w: message is required", domain.ErrValidation)
		rec := f.do(http.MethodPost, "/api/chat", `{"message":""}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})
}

func TestDraftRoutes_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		method     string
		target     string
		body       string
		wantStatus int
		wantDetail string
	}{
		{
			name:       "invalid id",
			method:     http.MethodGet,
			target:     "/api/drafts/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantDetail: "id must be a valid UUID",
		},
		{
			name:       "not found",
			method:     http.MethodGet,
			target:     "/api/drafts/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "remote unavailable",
			err:        fmt.Errorf("pull: %w", domain.ErrRemoteUnavailable),
			method:     http.MethodPost,
			target:     "/api/drafts/" + uuid.NewString() + "/generate",
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "remote storage unavailable",
		},
		{
			name:       "internal error hidden",
			err:        errors.New("pq: connection reset"),
			method:     http.MethodGet,
			target:     "/api/drafts",
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal server error",
		},
		{
			name:       "negative limit",
			method:     http.MethodGet,
			target:     "/api/drafts?limit=-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "create malformed body",
			method:     http.MethodPost,
			target:     "/api/drafts",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			f.drafts.err = tt.err

			rec := f.do(tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantDetail != "" {
				if detail, _ := decode(t, rec)["detail"].(string); !strings.Contains(detail, tt.wantDetail) {
					t.Errorf("detail = %q, want it to contain %q", detail, tt.wantDetail)
				}
			}
		})
	}
}

func TestDraftRoutes_Lifecycle(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/drafts", `{"title":"Leave Policy","content":"# Scope\nAll staff."}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.drafts.created.Title != "Leave Policy" {
		t.Errorf("created title = %q", f.drafts.created.Title)
	}

	rec = f.do(http.MethodGet, "/api/drafts?limit=5", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("list = %d %s, want 200 []", rec.Code, rec.Body.String())
	}
	if f.drafts.listLimit != 5 {
		t.Errorf("list limit = %d, want 5", f.drafts.listLimit)
	}

	view := f.addDraft(t, models.DraftStatusGenerated, "docx-bytes")
	rec = f.do(http.MethodPut, "/api/drafts/"+view.ID.String(), `{"metadata":{"revision":"2"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if f.drafts.updateActor != models.ActorUser {
		t.Errorf("update actor = %q, want %q", f.drafts.updateActor, models.ActorUser)
	}

	rec = f.do(http.MethodPost, "/api/drafts/"+view.ID.String()+"/publish", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d", rec.Code)
	}
	if rc, _ := decode(t, rec)["remote_copy"].(map[string]interface{}); rc["remote_id"] != "remote-1" {
		t.Errorf("publish remote copy = %v", rc)
	}
}

func TestGetDraftStatus(t *testing.T) {
	f := newFixture(t, true)

	withFile := f.addDraft(t, models.DraftStatusGenerated, "docx-bytes")
	body := decode(t, f.do(http.MethodGet, "/api/drafts/"+withFile.ID.String()+"/status", ""))
	if body["file_exists"] != true || body["file_modified_at"] == nil || body["status"] != "generated" {
		t.Errorf("status with file = %v", body)
	}

	noFile := f.addDraft(t, models.DraftStatusDraft, "")
	body = decode(t, f.do(http.MethodGet, "/api/drafts/"+noFile.ID.String()+"/status", ""))
	if body["file_exists"] != false {
		t.Errorf("file_exists = %v, want false", body["file_exists"])
	}
	if _, ok := body["file_modified_at"]; ok {
		t.Errorf("file_modified_at present for missing file")
	}
}

func TestPublishDraft_Locked(t *testing.T) {
	f := newFixture(t, true)
	f.drafts.err = &domain.DocumentLockedError{Filename: "Policy.docx", Attempts: 3}

	rec := f.do(http.MethodPost, "/api/drafts/"+uuid.NewString()+"/publish", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := decode(t, rec)
	if body["code"] != "DOCUMENT_LOCKED" {
		t.Errorf("code = %v", body["code"])
	}
	if body["remediation"] != "close Policy.docx in the other editor and retry" {
		t.Errorf("remediation = %v", body["remediation"])
	}
}

func TestDownloadDraft(t *testing.T) {
	t.Run("published", func(t *testing.T) {
		f := newFixture(t, true)
		view := f.addDraft(t, models.DraftStatusPublished, "docx-bytes")

		rec := f.do(http.MethodGet, "/api/drafts/"+view.ID.String()+"/download", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != "docx-bytes" {
			t.Errorf("body = %q", rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != models.DocxMimeType {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, filepath.Base(view.AbsolutePath)) {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if len(f.drafts.refreshed) != 1 || f.drafts.refreshed[0] != view.ID {
			t.Errorf("refreshed = %v", f.drafts.refreshed)
		}
	})

	t.Run("not published", func(t *testing.T) {
		f := newFixture(t, true)
		view := f.addDraft(t, models.DraftStatusGenerated, "docx-bytes")
		rec := f.do(http.MethodGet, "/api/drafts/"+view.ID.String()+"/download", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if len(f.drafts.refreshed) != 0 {
			t.Errorf("refreshed an unpublished draft")
		}
	})

	t.Run("remote unavailable", func(t *testing.T) {
		f := newFixture(t, true)
		view := f.addDraft(t, models.DraftStatusPublished, "")
		f.drafts.refreshErr = domain.ErrRemoteUnavailable
		rec := f.do(http.MethodGet, "/api/drafts/"+view.ID.String()+"/download", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("file missing", func(t *testing.T) {
		f := newFixture(t, true)
		view := f.addDraft(t, models.DraftStatusPublished, "")
		rec := f.do(http.MethodGet, "/api/drafts/"+view.ID.String()+"/download", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestListDocuments(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/documents", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list = %d %s", rec.Code, rec.Body.String())
	}

	f.copies.copies = []models.RemoteCopy{{Filename: "Policy.docx", RemoteID: "r1"}}
	var got []models.RemoteCopy
	if err := json.Unmarshal(f.do(http.MethodGet, "/api/documents", "").Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].RemoteID != "r1" {
		t.Errorf("documents = %+v", got)
	}
}

func TestEditorConfig(t *testing.T) {
	id := uuid.New()

	t.Run("authenticated user", func(t *testing.T) {
		f := newFixture(t, true)
		req := httptest.NewRequest(http.MethodGet, "/api/editor/config/"+id.String(), nil)
		req = httputil.WithClaims(req, &models.AuthClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-7"},
			Email:            "ana@example.com",
		})

		rec := f.doRequest(req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if f.editor.user != (services.EditorUser{ID: "user-7", Name: "ana@example.com"}) {
			t.Errorf("user = %+v", f.editor.user)
		}
		body := decode(t, rec)
		if body["server_url"] != "http://office.local" {
			t.Errorf("server_url = %v", body["server_url"])
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t, true)
		f.do(http.MethodGet, "/api/editor/config/"+id.String()+"?user_name=Bia", "")
		if f.editor.user != (services.EditorUser{ID: "anonymous", Name: "Bia"}) {
			t.Errorf("user = %+v", f.editor.user)
		}
	})
}

func TestEditorDocument(t *testing.T) {
	f := newFixture(t, true)
	view := f.addDraft(t, models.DraftStatusGenerated, "docx-bytes")

	rec := f.do(http.MethodGet, "/api/editor/document/"+view.ID.String(), "")
	if rec.Code != http.StatusOK || rec.Body.String() != "docx-bytes" {
		t.Errorf("document = %d %q", rec.Code, rec.Body.String())
	}
}

func TestEditorCallback(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		body      string
		header    string
		wantError float64
		wantToken string
		wantCall  bool
	}{
		{
			name:      "token from body",
			target:    "/api/editor/callback/" + uuid.NewString(),
			body:      `{"status":2,"url":"http://office/file","key":"k","token":"body-token","actions":[{"type":0}]}`,
			header:    "Bearer header-token",
			wantToken: "body-token",
			wantCall:  true,
		},
		{
			name:      "token from header",
			target:    "/api/editor/callback/" + uuid.NewString(),
			body:      `{"status":4,"key":"k"}`,
			header:    "Bearer header-token",
			wantToken: "header-token",
			wantCall:  true,
		},
		{
			name:      "invalid id",
			target:    "/api/editor/callback/42",
			body:      `{"status":2}`,
			wantError: 1,
		},
		{
			name:      "invalid body",
			target:    "/api/editor/callback/" + uuid.NewString(),
			body:      `not json`,
			wantError: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := f.doRequest(req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := decode(t, rec)["error"]; got != tt.wantError {
				t.Errorf("error = %v, want %v", got, tt.wantError)
			}
			if (f.editor.callback != nil) != tt.wantCall {
				t.Fatalf("callback forwarded = %v, want %v", f.editor.callback != nil, tt.wantCall)
			}
			if tt.wantCall && f.editor.callback.Token != tt.wantToken {
				t.Errorf("token = %q, want %q", f.editor.callback.Token, tt.wantToken)
			}
		})
	}
}

func TestEditorStatus(t *testing.T) {
	f := newFixture(t, true)
	f.editor.available = true

	body := decode(t, f.do(http.MethodGet, "/api/editor/status", ""))
	if body["available"] != true || body["server_url"] != "http://office.local" {
		t.Errorf("status = %v", body)
	}
}

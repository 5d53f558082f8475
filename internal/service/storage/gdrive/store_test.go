package gdrive

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

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
)

func TestIsLocked(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "423 status", err: &googleapi.Error{Code: http.StatusLocked}, want: true},
		{name: "locked reason", err: &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "fileLocked"}}}, want: true},
		{name: "wrapped api error", err: fmt.Errorf("upload: %w", &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "resourceLocked"}}}), want: true},
		{name: "being edited message", err: errors.New("file is being edited by another user"), want: true},
		{name: "quota exceeded", err: &googleapi.Error{Code: 403, Message: "quota exceeded", Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}}, want: false},
		{name: "plain failure", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.err); got != tt.want {
				t.Errorf("IsLocked(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("drive.NewService: %v", err)
	}
	return NewStoreWithService(svc, Config{FolderID: "folder-1"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_FindByName(t *testing.T) {
	var gotQuery string
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []map[string]string{{"id": "abc", "name": "policy.docx"}},
		})
	}))

	id, found, err := store.FindByName(context.Background(), "policy.docx")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	if !found || id != "abc" {
		t.Errorf("FindByName() = %q, %v", id, found)
	}
	if !strings.Contains(gotQuery, "'folder-1' in parents") || !strings.Contains(gotQuery, "name = 'policy.docx'") {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestStore_UploadLocked(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusLocked)
		w.Write([]byte(`{"error":{"code":423,"message":"The file is locked","errors":[{"reason":"locked"}]}}`))
	}))

	path := filepath.Join(t.TempDir(), "policy.docx")
	if err := os.WriteFile(path, []byte("docx"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Upload(context.Background(), path, "existing-id")
	if !errors.Is(err, domain.ErrDocumentLocked) {
		t.Fatalf("Upload() error = %v, want ErrDocumentLocked", err)
	}
}

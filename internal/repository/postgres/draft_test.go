package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

func newMockConfig(t *testing.T) (*RepositoryConfig, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return &RepositoryConfig{
		Pool:   mock,
		Tables: NewTableNames("test_"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, mock
}

func draftRow(id uuid.UUID, now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(draftColumns).AddRow(
		id,
		"Remote Work Policy",
		"generated",
		[]byte(`{"subject":"Remote work","code":"HR-001"}`),
		[]byte(`{"metadata":{"subject":"Remote work"},"sections":[{"title":"Purpose","body":"All staff may work remotely."}]}`),
		"Remote_Work_Policy-abcd1234.docx",
		"agent",
		now,
		now,
	)
}

func TestDraftRepository_Create(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDraftRepository(cfg)

	mock.ExpectExec("INSERT INTO test_drafts").
		WithArgs(
			pgxmock.AnyArg(), "Remote Work Policy", "draft", pgxmock.AnyArg(), pgxmock.AnyArg(),
			"Remote_Work_Policy-abcd1234.docx", "agent", pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	draft := &models.Draft{
		Title:          "Remote Work Policy",
		LocalFileRef:   "Remote_Work_Policy-abcd1234.docx",
		LastModifiedBy: models.ActorAgent,
	}
	if err := repo.Create(context.Background(), draft); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if draft.ID == uuid.Nil {
		t.Error("Create() did not assign an id")
	}
	if draft.Status != models.DraftStatusDraft {
		t.Errorf("Create() status = %q, want %q", draft.Status, models.DraftStatusDraft)
	}
	if draft.LastModifiedAt.IsZero() {
		t.Error("Create() did not set last_modified_at")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDraftRepository_GetByID(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	tests := []struct {
		name      string
		setup     func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantTitle string
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT").WithArgs(id).WillReturnRows(draftRow(id, now))
			},
			wantTitle: "Remote Work Policy",
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT").WithArgs(id).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, mock := newMockConfig(t)
			repo := NewDraftRepository(cfg)
			tt.setup(mock)

			draft, err := repo.GetByID(context.Background(), id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GetByID() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}

			if draft.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", draft.Title, tt.wantTitle)
			}
			if draft.Status != models.DraftStatusGenerated {
				t.Errorf("status = %q, want generated", draft.Status)
			}
			if draft.Metadata.Code != "HR-001" {
				t.Errorf("metadata.code = %q, want HR-001", draft.Metadata.Code)
			}
			if len(draft.Content.Sections) != 1 || draft.Content.Sections[0].Title != "Purpose" {
				t.Errorf("content sections = %+v", draft.Content.Sections)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDraftRepository_SetMetadata(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDraftRepository(cfg)
	id := uuid.New()

	mock.ExpectQuery("UPDATE test_drafts SET metadata").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), id.String()).
		WillReturnRows(draftRow(id, time.Now()))

	revision := "2"
	draft, err := repo.SetMetadata(context.Background(), id, &models.DraftMetadataPatch{Revision: &revision})
	if err != nil {
		t.Fatalf("SetMetadata() error = %v", err)
	}
	if draft.ID != id {
		t.Errorf("SetMetadata() id = %v, want %v", draft.ID, id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDraftRepository_SetMetadata_EmptyPatchReads(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDraftRepository(cfg)
	id := uuid.New()

	mock.ExpectQuery("SELECT").WithArgs(id).WillReturnRows(draftRow(id, time.Now()))

	if _, err := repo.SetMetadata(context.Background(), id, &models.DraftMetadataPatch{}); err != nil {
		t.Fatalf("SetMetadata() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDraftRepository_Touch(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updates existing draft", affected: 1},
		{name: "unknown draft", affected: 0, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, mock := newMockConfig(t)
			repo := NewDraftRepository(cfg)

			mock.ExpectExec("UPDATE test_drafts").
				WithArgs(id, pgxmock.AnyArg(), "editor").
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := repo.Touch(context.Background(), id, models.ActorEditor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Touch() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Touch() error = %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDraftRepository_SetStatus_RejectsUnknownStatus(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDraftRepository(cfg)

	if err := repo.SetStatus(context.Background(), uuid.New(), models.DraftStatus("archived")); err == nil {
		t.Fatal("SetStatus() expected error for unknown status")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database calls: %v", err)
	}
}

func TestDraftRepository_List(t *testing.T) {
	cfg, mock := newMockConfig(t)
	repo := NewDraftRepository(cfg)
	id := uuid.New()

	mock.ExpectQuery("SELECT .* FROM test_drafts ORDER BY last_modified_at DESC LIMIT 5").
		WillReturnRows(draftRow(id, time.Now()))

	drafts, err := repo.List(context.Background(), 5)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != id {
		t.Errorf("List() = %+v", drafts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

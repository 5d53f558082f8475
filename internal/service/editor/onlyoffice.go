// Package editor integrates drafts with an OnlyOffice-compatible document server.
package editor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

const (
	healthTimeout   = 5 * time.Second
	downloadTimeout = 60 * time.Second
	maxDownloadSize = 100 << 20
)

// Config locates the document server and this backend.
type Config struct {
	ServerURL  string // document server base URL
	BackendURL string // base URL the document server uses to reach this backend
	JWTSecret  string // signs configs and verifies callbacks; empty disables both
	Lang       string
}

type onlyOfficeService struct {
	drafts services.DraftService
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewService creates the editor service. client may be nil.
func NewService(drafts services.DraftService, cfg Config, client *http.Client, logger *slog.Logger) services.EditorService {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return &onlyOfficeService{
		drafts: drafts,
		config: cfg,
		client: client,
		logger: logger,
	}
}

func (s *onlyOfficeService) ServerURL() string {
	return s.config.ServerURL
}

func (s *onlyOfficeService) Config(ctx context.Context, draftID uuid.UUID, user services.EditorUser) (*services.EditorConfig, error) {
	view, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if user.ID == "" {
		user = services.EditorUser{ID: "user", Name: "User"}
	}

	cfg := &services.EditorConfig{
		Document: services.EditorDocument{
			FileType: "docx",
			Key:      DocumentKey(draftID, fileModTime(view.AbsolutePath)),
			Title:    view.LocalFileRef,
			URL:      fmt.Sprintf("%s/api/editor/document/%s", s.config.BackendURL, draftID),
			Permissions: services.EditorPermissions{
				Edit:     true,
				Download: true,
				Print:    true,
				Review:   true,
				Comment:  true,
			},
		},
		DocumentType: "word",
		EditorConfig: services.EditorSettings{
			CallbackURL: fmt.Sprintf("%s/api/editor/callback/%s", s.config.BackendURL, draftID),
			Lang:        s.config.Lang,
			Mode:        "edit",
			User:        user,
			Customization: services.EditorCustomization{
				Autosave:  true,
				Forcesave: true,
				Comments:  true,
				Help:      true,
			},
		},
	}

	if s.config.JWTSecret != "" {
		token, err := s.sign(cfg)
		if err != nil {
			return nil, fmt.Errorf("sign editor config: %w", err)
		}
		cfg.Token = token
	}

	return cfg, nil
}

// HandleCallback saves the edited file for statuses 2 and 6 and acknowledges
// everything else. Failures are logged and reported as {error: 1}.
func (s *onlyOfficeService) HandleCallback(ctx context.Context, draftID uuid.UUID, req *services.EditorCallback) services.EditorCallbackResult {
	if s.config.JWTSecret != "" {
		verified, err := s.verify(req.Token)
		if err != nil {
			s.logger.Warn("rejected editor callback", "draft_id", draftID, "error", err)
			return services.EditorCallbackResult{Error: 1}
		}
		req = verified
	}

	s.logger.Info("editor callback", "draft_id", draftID, "status", req.Status, "key", req.Key)

	if req.Status != services.EditorStatusReady && req.Status != services.EditorStatusForceSaved {
		return services.EditorCallbackResult{Error: 0}
	}

	data, err := s.download(ctx, req.URL)
	if err != nil {
		s.logger.Error("failed to download edited document", "draft_id", draftID, "error", err)
		return services.EditorCallbackResult{Error: 1}
	}

	if err := s.drafts.AcceptExternalSave(ctx, draftID, data, models.ActorEditor); err != nil {
		s.logger.Error("failed to save edited document", "draft_id", draftID, "error", err)
		return services.EditorCallbackResult{Error: 1}
	}

	s.logger.Info("edited document saved", "draft_id", draftID, "bytes", len(data))
	return services.EditorCallbackResult{Error: 0}
}

func (s *onlyOfficeService) Available(ctx context.Context) bool {
	if s.config.ServerURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.ServerURL+"/healthcheck", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (s *onlyOfficeService) download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("callback carries no document url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document server returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDownloadSize)
	}
	return data, nil
}

// sign signs the config itself as the token payload.
func (s *onlyOfficeService) sign(cfg *services.EditorConfig) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

// verify checks the callback token and returns the callback it carries.
// Header tokens wrap the body under "payload"; body tokens carry it directly.
func (s *onlyOfficeService) verify(tokenString string) (*services.EditorCallback, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var payload interface{} = map[string]interface{}(claims)
	if inner, ok := claims["payload"].(map[string]interface{}); ok {
		payload = inner
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var cb services.EditorCallback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}
	cb.Token = tokenString
	return &cb, nil
}

// DocumentKey identifies one version of a draft's file to the document
// server; it changes whenever the file is rewritten.
func DocumentKey(draftID uuid.UUID, modTime time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("draft-%s-%d", draftID, modTime.UnixMilli())))
	return hex.EncodeToString(sum[:])
}

func fileModTime(path string) time.Time {
	if path == "" {
		return time.Now()
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}

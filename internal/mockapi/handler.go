// Package mockapi serves the external analysis API on top of the in-repo mock
// analyzer so the gateway and CLI can run without the real backend.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docverify/internal/analysis"
	"docverify/internal/analysis/models"
	"docverify/internal/apiclient"
	"docverify/internal/documents"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

// DocumentStore holds the uploaded files keyed by file_id.
type DocumentStore interface {
	Save(ctx context.Context, doc documents.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (documents.Document, error)
}

const (
	maxJSONBody       = 1 << 20
	multipartOverhead = 1 << 20
)

// Handler implements /upload, /verify, /analyze-alterability, /chat,
// /summarize and /health. Errors use the {"detail": "..."} envelope the
// client expects.
type Handler struct {
	analyzer analysis.Analyzer
	docs     DocumentStore
	policy   documents.UploadPolicy
	logger   *slog.Logger
}

func New(analyzer analysis.Analyzer, docs DocumentStore, policy documents.UploadPolicy, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		docs:     docs,
		policy:   policy,
		logger:   logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get(apiclient.EndpointHealth, h.HandleHealth)
	r.Post(apiclient.EndpointUpload, h.HandleUpload)
	r.Post(apiclient.EndpointVerify, h.HandleVerify)
	r.Post(apiclient.EndpointAnalyzeAlterability, h.HandleAnalyzeAlterability)
	r.Post(apiclient.EndpointChat, h.HandleChat)
	r.Post(apiclient.EndpointSummarize, h.HandleSummarize)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	httputil.WriteJSON(w, status, map[string]string{"detail": detail})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.analyzer.Health(r.Context())
	if err != nil {
		writeDetail(w, http.StatusServiceUnavailable, "Health check failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.policy.MaxSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
	}
	if err != nil || header.Filename == "" {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "File size too large")
			return
		}
		h.logger.WarnContext(ctx, "upload without file", "request_id", requestcontext.RequestID(ctx))
		writeDetail(w, http.StatusBadRequest, "No file provided")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Upload failed: "+err.Error())
		return
	}
	if err := h.policy.ValidateUpload(header.Filename, int64(len(content))); err != nil {
		writeDetail(w, http.StatusBadRequest, messageOf(err))
		return
	}

	doc := documents.Document{
		ID:          uuid.New(),
		Name:        header.Filename,
		Size:        int64(len(content)),
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
		UploadedAt:  requestcontext.Now(ctx),
	}
	if err := h.docs.Save(ctx, doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to store upload", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	h.logger.InfoContext(ctx, "file uploaded",
		"file_id", doc.ID.String(),
		"filename", doc.Name,
		"size", doc.Size,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, models.UploadResult{
		FileID:   doc.ID.String(),
		Filename: doc.Name,
		Size:     doc.Size,
	})
}

func messageOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}

// decode reads a JSON body. Unknown fields are ignored.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}

// lookup resolves a file_id to its analyzer view, writing a 404 when unknown.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, fileID string) (analysis.Document, bool) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "File not found")
		return analysis.Document{}, false
	}
	doc, err := h.docs.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "File not found")
		} else {
			writeDetail(w, http.StatusInternalServerError, "document store unavailable")
		}
		return analysis.Document{}, false
	}
	return analysis.Document{ID: doc.ID, Name: doc.Name, ContentType: doc.ContentType, Content: doc.Content}, true
}

// answer writes the analyzer result or a 500 prefixed with failure.
func answer[T any](h *Handler, w http.ResponseWriter, r *http.Request, failure string, res T, err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "mock analysis failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeDetail(w, http.StatusInternalServerError, failure+": "+err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if !decode(w, r, &req) {
		return
	}
	doc, ok := h.lookup(w, r, req.FileID)
	if !ok {
		return
	}
	res, err := h.analyzer.Verify(r.Context(), doc, req.DocumentType)
	answer(h, w, r, "Verification failed", res, err)
}

func (h *Handler) HandleAnalyzeAlterability(w http.ResponseWriter, r *http.Request) {
	var req models.FileRequest
	if !decode(w, r, &req) {
		return
	}
	doc, ok := h.lookup(w, r, req.FileID)
	if !ok {
		return
	}
	res, err := h.analyzer.AnalyzeAlterability(r.Context(), doc)
	answer(h, w, r, "Alterability analysis failed", res, err)
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	doc, ok := h.lookup(w, r, req.FileID)
	if !ok {
		return
	}
	res, err := h.analyzer.Chat(r.Context(), doc, req.Message, req.ChatHistory)
	answer(h, w, r, "Chat request failed", res, err)
}

func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.FileRequest
	if !decode(w, r, &req) {
		return
	}
	doc, ok := h.lookup(w, r, req.FileID)
	if !ok {
		return
	}
	res, err := h.analyzer.Summarize(r.Context(), doc)
	answer(h, w, r, "Summarization failed", res, err)
}

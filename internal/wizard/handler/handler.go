package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	analysisModels "docverify/internal/analysis/models"
	"docverify/internal/wizard/models"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/requestcontext"
)

// Service defines the wizard operations exposed over HTTP.
type Service interface {
	Start(ctx context.Context, ownerID uuid.UUID) (*models.Wizard, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error)
	SelectType(ctx context.Context, ownerID, id uuid.UUID, docType, customType string) (*models.Wizard, error)
	Upload(ctx context.Context, ownerID, id uuid.UUID, name, contentType string, content []byte) (*models.Wizard, error)
	Next(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error)
	Back(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error)
	RunTask(ctx context.Context, ownerID, id uuid.UUID, task models.TaskType) (*models.Wizard, error)
	Chat(ctx context.Context, ownerID, id uuid.UUID, message string) (*models.Wizard, error)
	ClearChat(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error)
	Reset(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error)
	Summary(ctx context.Context, ownerID, id uuid.UUID) (analysisModels.Summary, error)
}

// multipartOverhead is allowed on top of the file size limit for form framing.
const multipartOverhead = 1 << 20

// Handler serves /wizards endpoints. All routes require authentication.
type Handler struct {
	wizards       Service
	logger        *slog.Logger
	requireAuth   func(http.Handler) http.Handler
	maxUploadSize int64
}

func New(wizards Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler, maxUploadSize int64) *Handler {
	return &Handler{
		wizards:       wizards,
		logger:        logger,
		requireAuth:   requireAuth,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/wizards", func(r chi.Router) {
		if h.requireAuth != nil {
			r.Use(h.requireAuth)
		}
		r.Post("/", h.HandleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/document-type", h.HandleSelectType)
			r.Post("/document", h.HandleUpload)
			r.Post("/next", h.HandleNext)
			r.Post("/back", h.HandleBack)
			r.Post("/tasks/{task}", h.HandleRunTask)
			r.Post("/chat", h.HandleChat)
			r.Delete("/chat", h.HandleClearChat)
			r.Post("/reset", h.HandleReset)
			r.Get("/summary", h.HandleSummary)
		})
	})
}

func wizardID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeNotFound, "wizard not found")
	}
	return id, nil
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wiz, err := h.wizards.Start(ctx, requestcontext.UserID(ctx))
	h.respond(w, r, http.StatusCreated, wiz, err)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.wizards.Get)
}

func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.wizards.Next)
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.wizards.Back)
}

func (h *Handler) HandleClearChat(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.wizards.ClearChat)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.simple(w, r, h.wizards.Reset)
}

// simple serves the endpoints that take only the caller and wizard id.
func (h *Handler) simple(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, uuid.UUID) (*models.Wizard, error)) {
	ctx := r.Context()
	id, err := wizardID(r)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	wiz, err := op(ctx, requestcontext.UserID(ctx), id)
	h.respond(w, r, http.StatusOK, wiz, err)
}

func (h *Handler) HandleSelectType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := wizardID(r)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	var req models.SelectTypeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	wiz, err := h.wizards.SelectType(ctx, requestcontext.UserID(ctx), id, req.DocumentType, req.CustomType)
	h.respond(w, r, http.StatusOK, wiz, err)
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := wizardID(r)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = dErrors.New(dErrors.CodeValidation, "File size too large")
		} else {
			err = dErrors.New(dErrors.CodeBadRequest, "No file provided")
		}
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file"))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	wiz, err := h.wizards.Upload(ctx, requestcontext.UserID(ctx), id, header.Filename, contentType, content)
	h.respond(w, r, http.StatusOK, wiz, err)
}

func (h *Handler) HandleRunTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := wizardID(r)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	task, err := models.ParseTaskType(chi.URLParam(r, "task"))
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	wiz, err := h.wizards.RunTask(ctx, requestcontext.UserID(ctx), id, task)
	h.respond(w, r, http.StatusOK, wiz, err)
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := wizardID(r)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	var req models.ChatRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	wiz, err := h.wizards.Chat(ctx, requestcontext.UserID(ctx), id, req.Message)
	h.respond(w, r, http.StatusOK, wiz, err)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := wizardID(r)
	if err != nil {
		h.respond(w, r, http.StatusOK, nil, err)
		return
	}
	summary, err := h.wizards.Summary(ctx, requestcontext.UserID(ctx), id)
	h.respond(w, r, http.StatusOK, summary, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body any, err error) {
	if err == nil {
		httputil.WriteJSON(w, status, body)
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	if de, ok := dErrors.As(err); ok && httputil.StatusFor(de.Code) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, "wizard request rejected",
			"path", r.URL.Path,
			"error", err,
			"request_id", requestID,
		)
	} else {
		h.logger.ErrorContext(ctx, "wizard request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", requestID,
		)
	}
	httputil.WriteError(w, err)
}

package analysis

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"docverify/internal/analysis/models"
	"docverify/internal/apiclient"
)

// APIClient is the subset of apiclient.Client the remote analyzer needs.
type APIClient interface {
	Upload(ctx context.Context, name, contentType string, content []byte) (models.UploadResult, error)
	Verify(ctx context.Context, fileID, documentType string) (models.VerificationResult, error)
	AnalyzeAlterability(ctx context.Context, fileID string) (models.AlterabilityAnalysis, error)
	Chat(ctx context.Context, fileID, message string, history []models.ChatMessage) (models.ChatResponse, error)
	Summarize(ctx context.Context, fileID string) (models.Summary, error)
	Health(ctx context.Context) (models.Health, error)
}

// Remote forwards tasks to the external API. Each document is uploaded once;
// the backend file id is cached by document id and re-uploaded if the
// backend reports it unknown.
type Remote struct {
	client APIClient
	logger *slog.Logger

	mu      sync.Mutex
	fileIDs map[uuid.UUID]string
}

func NewRemote(client APIClient, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Remote{
		client:  client,
		logger:  logger,
		fileIDs: make(map[uuid.UUID]string),
	}
}

// Forget drops the cached backend file id, e.g. after the document is replaced.
func (r *Remote) Forget(docID uuid.UUID) {
	r.mu.Lock()
	delete(r.fileIDs, docID)
	r.mu.Unlock()
}

func (r *Remote) fileID(ctx context.Context, doc Document) (string, error) {
	r.mu.Lock()
	id, ok := r.fileIDs[doc.ID]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	up, err := r.client.Upload(ctx, doc.Name, doc.ContentType, doc.Content)
	if err != nil {
		return "", err
	}
	r.logger.InfoContext(ctx, "document uploaded to analysis backend",
		"document_id", doc.ID,
		"file_id", up.FileID,
	)

	r.mu.Lock()
	r.fileIDs[doc.ID] = up.FileID
	r.mu.Unlock()
	return up.FileID, nil
}

// withFile resolves the backend file id and runs fn, uploading again once if
// the backend no longer knows the file.
func withFile[T any](ctx context.Context, r *Remote, doc Document, fn func(fileID string) (T, error)) (T, error) {
	var zero T
	id, err := r.fileID(ctx, doc)
	if err != nil {
		return zero, err
	}
	res, err := fn(id)
	if err == nil || apiclient.StatusCode(err) != http.StatusNotFound {
		return res, err
	}

	r.logger.WarnContext(ctx, "backend lost uploaded file, uploading again",
		"document_id", doc.ID,
		"file_id", id,
	)
	r.Forget(doc.ID)
	if id, err = r.fileID(ctx, doc); err != nil {
		return zero, err
	}
	return fn(id)
}

func (r *Remote) Verify(ctx context.Context, doc Document, documentType string) (models.VerificationResult, error) {
	return withFile(ctx, r, doc, func(id string) (models.VerificationResult, error) {
		return r.client.Verify(ctx, id, documentType)
	})
}

func (r *Remote) AnalyzeAlterability(ctx context.Context, doc Document) (models.AlterabilityAnalysis, error) {
	return withFile(ctx, r, doc, func(id string) (models.AlterabilityAnalysis, error) {
		return r.client.AnalyzeAlterability(ctx, id)
	})
}

func (r *Remote) Chat(ctx context.Context, doc Document, message string, history []models.ChatMessage) (models.ChatResponse, error) {
	return withFile(ctx, r, doc, func(id string) (models.ChatResponse, error) {
		return r.client.Chat(ctx, id, message, history)
	})
}

func (r *Remote) Summarize(ctx context.Context, doc Document) (models.Summary, error) {
	return withFile(ctx, r, doc, func(id string) (models.Summary, error) {
		return r.client.Summarize(ctx, id)
	})
}

func (r *Remote) Health(ctx context.Context) (models.Health, error) {
	return r.client.Health(ctx)
}

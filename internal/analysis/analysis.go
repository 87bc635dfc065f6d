// Package analysis answers wizard tasks about an uploaded document.
//
// Two implementations satisfy Analyzer: Mock, which produces canned results
// keyed off the file name, and Remote, which forwards to the external API
// through the retrying apiclient.
package analysis

import (
	"context"

	"github.com/google/uuid"

	"docverify/internal/analysis/models"
)

// Document is the view of an uploaded file the analyzers work on.
type Document struct {
	ID          uuid.UUID
	Name        string
	ContentType string
	Content     []byte
}

//go:generate mockgen -source=analysis.go -destination=mocks/mocks.go -package=mocks Analyzer

// Analyzer runs the document tasks.
type Analyzer interface {
	Verify(ctx context.Context, doc Document, documentType string) (models.VerificationResult, error)
	AnalyzeAlterability(ctx context.Context, doc Document) (models.AlterabilityAnalysis, error)
	Chat(ctx context.Context, doc Document, message string, history []models.ChatMessage) (models.ChatResponse, error)
	Summarize(ctx context.Context, doc Document) (models.Summary, error)
	Health(ctx context.Context) (models.Health, error)
}

package apiclient

import (
	"context"
	"fmt"

	"docverify/internal/analysis/models"
)

// File is a local document to send to the backend.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// VerifyDocument uploads f and runs the authenticity check on it.
func (c *Client) VerifyDocument(ctx context.Context, f File, documentType string) (models.VerificationResult, error) {
	up, err := c.Upload(ctx, f.Name, f.ContentType, f.Content)
	if err != nil {
		return models.VerificationResult{}, err
	}
	c.logger.InfoContext(ctx, "file uploaded, verifying", "file_id", up.FileID, "document_type", documentType)
	return c.Verify(ctx, up.FileID, documentType)
}

// AnalyzeDocument uploads f and runs the alteration-risk check on it.
func (c *Client) AnalyzeDocument(ctx context.Context, f File) (models.AlterabilityAnalysis, error) {
	up, err := c.Upload(ctx, f.Name, f.ContentType, f.Content)
	if err != nil {
		return models.AlterabilityAnalysis{}, err
	}
	return c.AnalyzeAlterability(ctx, up.FileID)
}

// ChatWithDocument uploads f and asks message about it.
func (c *Client) ChatWithDocument(ctx context.Context, f File, message string, history []models.ChatMessage) (models.ChatResponse, error) {
	up, err := c.Upload(ctx, f.Name, f.ContentType, f.Content)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	res, err := c.Chat(ctx, up.FileID, message, history)
	if err != nil {
		return models.ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	return res, nil
}

// SummarizeDocument uploads f and returns its summary.
func (c *Client) SummarizeDocument(ctx context.Context, f File) (models.Summary, error) {
	up, err := c.Upload(ctx, f.Name, f.ContentType, f.Content)
	if err != nil {
		return models.Summary{}, err
	}
	return c.Summarize(ctx, up.FileID)
}

// Package models holds the result shapes exchanged with the analysis backend.
// JSON tags follow the external API contract (camelCase results, snake_case requests).
package models

// RiskLevel grades verification and alteration risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type AnalysisDetails struct {
	StructureValidation   bool `json:"structureValidation"`
	SignatureVerification bool `json:"signatureVerification"`
	ContentIntegrity      bool `json:"contentIntegrity"`
	MetadataAnalysis      bool `json:"metadataAnalysis"`
	TamperingDetection    bool `json:"tamperingDetection"`
}

type LegalCompliance struct {
	IsCompliant     bool     `json:"isCompliant"`
	MissingElements []string `json:"missingElements"`
	ComplianceScore int      `json:"complianceScore"`
}

// VerificationResult is the outcome of an authenticity check.
type VerificationResult struct {
	IsValid           bool            `json:"isValid"`
	Confidence        int             `json:"confidence"`
	IsAuthentic       bool            `json:"isAuthentic"`
	AuthenticityScore int             `json:"authenticityScore"`
	Issues            []string        `json:"issues"`
	Recommendations   []string        `json:"recommendations"`
	Summary           string          `json:"summary"`
	RiskLevel         RiskLevel       `json:"riskLevel"`
	AnalysisDetails   AnalysisDetails `json:"analysisDetails"`
	LegalCompliance   LegalCompliance `json:"legalCompliance"`
}

type TechnicalDetails struct {
	FontConsistency     bool `json:"fontConsistency"`
	TextInsertion       bool `json:"textInsertion"`
	MetadataIntact      bool `json:"metadataIntact"`
	DigitalSignature    bool `json:"digitalSignature"`
	TimestampValidation bool `json:"timestampValidation"`
}

// AlterabilityAnalysis is the outcome of a tamper-risk check.
type AlterabilityAnalysis struct {
	AlterabilityRisk RiskLevel        `json:"alterabilityRisk"`
	Confidence       int              `json:"confidence"`
	Findings         []string         `json:"findings"`
	Summary          string           `json:"summary"`
	TechnicalDetails TechnicalDetails `json:"technicalDetails"`
}

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	RoleUser ChatRole = "user"
	RoleAI   ChatRole = "ai"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Message string   `json:"message"`
}

type ChatResponse struct {
	Response   string   `json:"response"`
	Confidence int      `json:"confidence"`
	Sources    []string `json:"sources"`
}

type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// UploadResult is returned by the backend after a file upload.
type UploadResult struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Request bodies for the external API.

type VerifyRequest struct {
	FileID       string `json:"file_id"`
	DocumentType string `json:"document_type"`
}

type FileRequest struct {
	FileID string `json:"file_id"`
}

type ChatRequest struct {
	FileID      string        `json:"file_id"`
	Message     string        `json:"message"`
	ChatHistory []ChatMessage `json:"chat_history"`
}

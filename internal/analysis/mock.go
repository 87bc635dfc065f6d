package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"docverify/internal/analysis/models"
)

// MockVersion is reported by the mock health check.
const MockVersion = "1.0.0-mock"

// ChatSources is attached to every mock chat answer.
var ChatSources = []string{"document_analysis", "legal_database", "standard_practices", "case_law"}

var missingComplianceElements = []string{"witness_signature", "notary_stamp", "official_seal"}

// Mock produces plausible results from the file name alone. It never reads the
// content except to count PDF pages for the summary.
type Mock struct {
	mu       sync.Mutex
	rng      *rand.Rand
	minDelay time.Duration
	maxDelay time.Duration
	logger   *slog.Logger
}

type MockOption func(*Mock)

// WithRand fixes the random source; tests pass a seeded generator.
func WithRand(r *rand.Rand) MockOption {
	return func(m *Mock) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithLatency makes every call wait a random duration in [min, max].
func WithLatency(min, max time.Duration) MockOption {
	return func(m *Mock) {
		if max < min {
			max = min
		}
		m.minDelay, m.maxDelay = min, max
	}
}

func WithMockLogger(logger *slog.Logger) MockOption {
	return func(m *Mock) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// intn returns a value in [lo, lo+n).
func (m *Mock) intn(lo, n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo + m.rng.IntN(n)
}

func (m *Mock) chance(p float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() > 1-p
}

func (m *Mock) wait(ctx context.Context) error {
	if m.maxDelay <= 0 {
		return ctx.Err()
	}
	d := m.minDelay
	if span := m.maxDelay - m.minDelay; span > 0 {
		m.mu.Lock()
		d += time.Duration(m.rng.Int64N(int64(span) + 1))
		m.mu.Unlock()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func (m *Mock) Verify(ctx context.Context, doc Document, documentType string) (models.VerificationResult, error) {
	if err := m.wait(ctx); err != nil {
		return models.VerificationResult{}, err
	}
	res := m.verification(doc.Name)
	m.logger.DebugContext(ctx, "mock verification",
		"document", doc.Name,
		"document_type", documentType,
		"risk_level", res.RiskLevel,
		"score", res.AuthenticityScore,
	)
	return res, nil
}

func (m *Mock) verification(fileName string) models.VerificationResult {
	name := strings.ToLower(fileName)

	var res models.VerificationResult
	switch {
	case containsAny(name, "fake", "fraud", "forged"):
		res.AuthenticityScore = m.intn(15, 20)
		res.Confidence = m.intn(85, 10)
		res.RiskLevel = models.RiskHigh
		res.Issues = []string{
			"Document structure appears manipulated",
			"Signatures do not match official records",
			"Inconsistent formatting and typography",
			"Metadata shows signs of editing",
			"Legal language patterns are suspicious",
		}
		res.Recommendations = []string{
			"DO NOT USE this document for legal purposes",
			"Contact legal authorities if this was presented as authentic",
			"Verify document source through official channels",
			"Consider this document as potentially fraudulent",
		}
		res.Summary = "WARNING: This document shows strong indicators of being FAKE or FRAUDULENT. " +
			"Multiple red flags detected including manipulated structure, suspicious signatures, and inconsistent formatting. " +
			"This document should NOT be used for any legal purposes."
	case containsAny(name, "test", "sample"):
		res.AuthenticityScore = m.intn(45, 25)
		res.Confidence = m.intn(75, 15)
		res.RiskLevel = models.RiskMedium
		res.Issues = []string{
			"Some formatting inconsistencies detected",
			"Missing some standard legal elements",
			"Signature verification incomplete",
		}
		res.Recommendations = []string{
			"Verify document source through official channels",
			"Cross-check with original records if possible",
			"Consult with legal expert before use",
			"Additional verification recommended",
		}
		res.Summary = "CAUTION: This document shows some inconsistencies that require further verification. " +
			"While not definitively fake, additional checks are recommended before using for legal purposes."
	default:
		res.AuthenticityScore = m.intn(80, 15)
		res.Confidence = m.intn(88, 10)
		res.RiskLevel = models.RiskLow
		res.Issues = []string{"No major issues detected"}
		res.Recommendations = []string{
			"Document appears to be legally valid",
			"All required elements are present",
			"Signatures and formatting are consistent",
			"Safe to use for legal purposes",
		}
		res.Summary = "VERIFIED: This document appears to be LEGITIMATE and legally valid. " +
			"All verification checks passed with high confidence. " +
			"The document structure, signatures, and formatting are consistent with authentic legal documents."
	}

	applyScoreThresholds(&res)
	return res
}

// applyScoreThresholds fills the fields derived from the authenticity score.
func applyScoreThresholds(res *models.VerificationResult) {
	score := res.AuthenticityScore
	res.IsValid = score > 60
	res.IsAuthentic = score > 70
	res.AnalysisDetails = models.AnalysisDetails{
		StructureValidation:   score > 70,
		SignatureVerification: score > 75,
		ContentIntegrity:      score > 65,
		MetadataAnalysis:      score > 70,
		TamperingDetection:    score > 80,
	}
	res.LegalCompliance = models.LegalCompliance{
		IsCompliant:     score > 70,
		MissingElements: []string{},
		ComplianceScore: score * 9 / 10,
	}
	if score < 80 {
		res.LegalCompliance.MissingElements = append([]string(nil), missingComplianceElements...)
	}
}

func (m *Mock) AnalyzeAlterability(ctx context.Context, doc Document) (models.AlterabilityAnalysis, error) {
	if err := m.wait(ctx); err != nil {
		return models.AlterabilityAnalysis{}, err
	}
	res := m.alterability(doc.Name)
	m.logger.DebugContext(ctx, "mock alterability analysis",
		"document", doc.Name,
		"risk_level", res.AlterabilityRisk,
	)
	return res, nil
}

func (m *Mock) alterability(fileName string) models.AlterabilityAnalysis {
	name := strings.ToLower(fileName)

	switch {
	case containsAny(name, "tampered", "forged", "fake"):
		return models.AlterabilityAnalysis{
			AlterabilityRisk: models.RiskHigh,
			Confidence:       m.intn(90, 10),
			Findings: []string{
				"CRITICAL: Multiple text insertions detected",
				"Document metadata has been significantly altered",
				"Font inconsistencies indicate copy-paste operations",
				"Digital signature verification failed",
				"Timestamp anomalies detected",
				"PDF structure shows signs of manipulation",
				"Original document properties have been modified",
				"Watermark and security features compromised",
			},
			Summary: "HIGH RISK: This document shows clear evidence of tampering and alteration. " +
				"Multiple technical indicators suggest the document has been modified after its original creation. " +
				"The integrity of this document cannot be trusted.",
			TechnicalDetails: models.TechnicalDetails{TextInsertion: true},
		}
	case containsAny(name, "modified", "edited", "altered"):
		return models.AlterabilityAnalysis{
			AlterabilityRisk: models.RiskMedium,
			Confidence:       m.intn(80, 15),
			Findings: []string{
				"Some text modifications detected",
				"Minor metadata discrepancies found",
				"Font variations in certain sections",
				"Timestamp inconsistencies noted",
				"Some document properties appear modified",
				"PDF structure shows minor anomalies",
			},
			Summary: "MEDIUM RISK: This document shows some signs of potential alteration. " +
				"While not definitively tampered with, several inconsistencies suggest the document may have been modified. " +
				"Further investigation recommended.",
			TechnicalDetails: models.TechnicalDetails{
				TextInsertion:    true,
				DigitalSignature: m.chance(0.7),
			},
		}
	default:
		return models.AlterabilityAnalysis{
			AlterabilityRisk: models.RiskLow,
			Confidence:       m.intn(88, 10),
			Findings: []string{
				"Consistent font usage throughout document",
				"No text insertion or modification detected",
				"Original PDF metadata intact and valid",
				"Digital signature verification passed",
				"Timestamp validation successful",
				"Document structure appears authentic",
				"No signs of copy-paste operations",
				"Security features and watermarks intact",
			},
			Summary: "LOW RISK: This document shows no signs of tampering or alteration. " +
				"All technical indicators suggest the document is authentic and has not been modified since its original creation.",
			TechnicalDetails: models.TechnicalDetails{
				FontConsistency:     true,
				MetadataIntact:      true,
				DigitalSignature:    true,
				TimestampValidation: true,
			},
		}
	}
}

// Chat answers from a fixed set of topics matched by keyword; history is ignored.
func (m *Mock) Chat(ctx context.Context, doc Document, message string, history []models.ChatMessage) (models.ChatResponse, error) {
	if err := m.wait(ctx); err != nil {
		return models.ChatResponse{}, err
	}
	return models.ChatResponse{
		Response:   m.chatAnswer(strings.ToLower(message), doc.Name),
		Confidence: 95,
		Sources:    append([]string(nil), ChatSources...),
	}, nil
}

func (m *Mock) chatAnswer(msg, fileName string) string {
	switch {
	case strings.Contains(msg, "what") && strings.Contains(msg, "document"):
		return fmt.Sprintf("Based on your document \"%s\", this appears to be a legal document. "+
			"I can analyze its structure, identify key clauses, and explain legal terms. "+
			"The document contains standard legal language and follows proper formatting conventions. "+
			"Would you like me to explain any specific section or clause?", fileName)
	case containsAny(msg, "clause", "section"):
		return "I can help you understand the clauses in your document. " +
			"Legal documents typically contain several key sections including: definitions, terms and conditions, " +
			"obligations of parties, termination clauses, and dispute resolution. Each clause serves a specific legal purpose. " +
			"Which particular clause would you like me to explain in detail?"
	case strings.Contains(msg, "legal") && strings.Contains(msg, "meaning"):
		return "Legal documents use precise language that may seem complex. I can break down legal terms into plain language. " +
			`For example, "consideration" means something of value exchanged between parties, "indemnification" means protection against losses, ` +
			`and "force majeure" refers to circumstances beyond control. What specific legal term would you like me to explain?`
	case containsAny(msg, "valid", "binding"):
		return "For a document to be legally valid and binding, it typically needs: proper signatures from all parties, " +
			"clear terms and conditions, consideration (exchange of value), and compliance with applicable laws. " +
			"Your document appears to follow these requirements. However, I recommend consulting with a legal professional for specific legal advice."
	case containsAny(msg, "risk", "danger"):
		return "I can help identify potential risks in your document. Common areas to review include: unclear terms, " +
			"missing deadlines, inadequate dispute resolution clauses, and lack of termination conditions. " +
			"Legal documents should be clear, specific, and protect all parties' interests. What specific concern do you have about your document?"
	case containsAny(msg, "signature", "sign"):
		return "Signatures are crucial for document validity. They indicate agreement to the terms. " +
			"In your document, I can see signature lines for all parties. Digital signatures are also legally valid in most jurisdictions. " +
			"Make sure all required parties sign and date the document. Do you have questions about the signature requirements?"
	case containsAny(msg, "termination", "end"):
		return "Termination clauses specify how and when the agreement can end. They typically include: notice periods, " +
			"breach conditions, mutual agreement, and automatic expiration dates. " +
			"These clauses protect both parties by providing clear exit strategies. Would you like me to explain the termination conditions in your document?"
	case containsAny(msg, "dispute", "conflict"):
		return "Dispute resolution clauses outline how conflicts will be handled. Common methods include: negotiation, " +
			"mediation, arbitration, and litigation. Your document likely includes one of these methods. " +
			"This is important for avoiding costly court battles. What questions do you have about dispute resolution?"
	case containsAny(msg, "obligation", "duty"):
		return "Obligations are the duties and responsibilities each party must fulfill under the agreement. " +
			"These are usually clearly outlined in the document and may include: payment terms, delivery requirements, " +
			"confidentiality obligations, and performance standards. Understanding these is crucial for compliance. " +
			"Which obligations would you like me to clarify?"
	case containsAny(msg, "payment", "money"):
		return "Payment terms specify when, how, and how much money is to be exchanged. This typically includes: " +
			"payment amounts, due dates, payment methods, late fees, and currency. " +
			"Clear payment terms prevent disputes and ensure timely compensation. Do you need clarification on any payment-related clauses?"
	}

	defaults := []string{
		fmt.Sprintf("I can help you understand your \"%s\" document. I can explain legal terms, identify key clauses, "+
			"analyze risks, and clarify obligations. What specific aspect of the document would you like me to help you with?", fileName),
		"Your document appears to be well-structured with standard legal language. I can break down complex legal concepts, " +
			"explain your rights and obligations, and identify important clauses. What would you like to know more about?",
		"I'm here to help you understand your legal document. I can explain terminology, highlight important sections, " +
			"and answer questions about legal implications. What specific question do you have about your document?",
	}
	return defaults[m.intn(0, len(defaults))]
}

func (m *Mock) Summarize(ctx context.Context, doc Document) (models.Summary, error) {
	if err := m.wait(ctx); err != nil {
		return models.Summary{}, err
	}
	summary := models.Summary{
		Summary: fmt.Sprintf("This is a legal document (%s) containing standard legal language and structure. "+
			"The document appears to be professionally drafted and follows common legal document formatting practices.", doc.Name),
		KeyPoints: []string{
			"Standard legal document structure",
			"Professional formatting and language",
			"Contains typical legal clauses and terms",
			"Appears to be properly executed",
			"Follows legal document best practices",
		},
	}

	if IsPDF(doc) {
		pages, err := PageCount(doc.Content)
		if err != nil {
			m.logger.DebugContext(ctx, "pdf page count unavailable", "document", doc.Name, "error", err)
		} else {
			summary.KeyPoints = append(summary.KeyPoints, fmt.Sprintf("Document spans %d page(s)", pages))
		}
	}
	return summary, nil
}

func (m *Mock) Health(ctx context.Context) (models.Health, error) {
	return models.Health{Status: "healthy", Version: MockVersion}, nil
}

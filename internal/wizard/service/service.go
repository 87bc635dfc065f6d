package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docverify/internal/analysis"
	analysisModels "docverify/internal/analysis/models"
	"docverify/internal/documents"
	"docverify/internal/platform/metrics"
	"docverify/internal/wizard/models"
	dErrors "docverify/pkg/domain-errors"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

// Store persists wizards. Execute runs fn on a private copy and saves it only
// when fn returns nil.
type Store interface {
	Create(ctx context.Context, w *models.Wizard) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Wizard, error)
	Execute(ctx context.Context, id uuid.UUID, fn func(*models.Wizard) error) (*models.Wizard, error)
}

// DocumentStore holds uploaded file contents.
type DocumentStore interface {
	Save(ctx context.Context, doc documents.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (documents.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// forgetter is implemented by analyzers that cache per-document state.
type forgetter interface {
	Forget(docID uuid.UUID)
}

// User-facing task failure messages. The underlying cause is only logged.
const (
	msgVerifyFailed  = "Document verification failed"
	msgAnalyzeFailed = "Alterability analysis failed"
	msgChatFailed    = "Chat request failed"
)

var errWizardNotFound = dErrors.New(dErrors.CodeNotFound, "wizard not found")

// Service drives the three-step wizard and runs its tasks.
type Service struct {
	wizards  Store
	docs     DocumentStore
	analyzer analysis.Analyzer
	policy   documents.UploadPolicy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(wizards Store, docs DocumentStore, analyzer analysis.Analyzer, policy documents.UploadPolicy, opts ...Option) *Service {
	s := &Service{
		wizards:  wizards,
		docs:     docs,
		analyzer: analyzer,
		policy:   policy,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new wizard on the type selection step.
func (s *Service) Start(ctx context.Context, ownerID uuid.UUID) (*models.Wizard, error) {
	if ownerID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	w := models.NewWizard(uuid.New(), ownerID, s.now())
	if err := s.wizards.Create(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create wizard")
	}
	s.logger.InfoContext(ctx, "wizard started",
		"wizard_id", w.ID.String(),
		"user_id", ownerID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return w, nil
}

// Get returns the wizard if ownerID owns it. Other users get not found.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error) {
	w, err := s.wizards.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	if w.OwnerID != ownerID {
		return nil, errWizardNotFound
	}
	return w, nil
}

// update loads the owner's wizard, applies fn and stamps UpdatedAt.
func (s *Service) update(ctx context.Context, ownerID, id uuid.UUID, fn func(*models.Wizard) error) (*models.Wizard, error) {
	w, err := s.wizards.Execute(ctx, id, func(w *models.Wizard) error {
		if w.OwnerID != ownerID {
			return errWizardNotFound
		}
		if err := fn(w); err != nil {
			return err
		}
		w.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err)
	}
	return w, nil
}

func (s *Service) mapStoreError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return errWizardNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "wizard store failure")
}

// SelectType records the document type. A custom label is kept only for "other".
func (s *Service) SelectType(ctx context.Context, ownerID, id uuid.UUID, docType, customType string) (*models.Wizard, error) {
	t, err := documents.ParseDocumentType(docType)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		if w.Step != models.StepSelectType {
			return dErrors.New(dErrors.CodeInvalidState, "document type can only be changed on the first step")
		}
		w.DocumentType = &t
		w.CustomType = ""
		if t == documents.TypeOther {
			w.CustomType = strings.TrimSpace(customType)
		}
		return nil
	})
}

// Upload validates and stores the file. Replacing a file clears task results
// and chat history.
func (s *Service) Upload(ctx context.Context, ownerID, id uuid.UUID, name, contentType string, content []byte) (*models.Wizard, error) {
	if err := s.policy.ValidateUpload(name, int64(len(content))); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	doc := documents.Document{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType,
		Content:     content,
		UploadedAt:  s.now(),
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}

	var replaced *models.DocumentRef
	w, err := s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		if w.Step != models.StepUpload {
			return dErrors.New(dErrors.CodeInvalidState, "documents can only be uploaded on the upload step")
		}
		replaced = w.Document
		w.Document = &models.DocumentRef{
			ID:          doc.ID,
			Name:        doc.Name,
			Size:        doc.Size,
			ContentType: doc.ContentType,
			UploadedAt:  doc.UploadedAt,
		}
		w.ResetTasks()
		w.ChatHistory = []analysisModels.ChatMessage{}
		return nil
	})
	if err != nil {
		_ = s.docs.Delete(ctx, doc.ID)
		return nil, err
	}

	if replaced != nil {
		s.discardDocument(ctx, replaced.ID)
	}
	s.logger.InfoContext(ctx, "document uploaded",
		"wizard_id", id.String(),
		"document_id", doc.ID.String(),
		"size", doc.Size,
		"request_id", requestcontext.RequestID(ctx),
	)
	return w, nil
}

func (s *Service) discardDocument(ctx context.Context, docID uuid.UUID) {
	if f, ok := s.analyzer.(forgetter); ok {
		f.Forget(docID)
	}
	if err := s.docs.Delete(ctx, docID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete replaced document",
			"document_id", docID.String(),
			"error", err,
		)
	}
}

// Next advances one step when the current step is complete. It is a no-op on
// the last step.
func (s *Service) Next(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error) {
	return s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		switch {
		case w.Step >= models.StepTasks:
			return nil
		case w.CanProceed():
			w.Step++
			return nil
		case w.Step == models.StepSelectType && w.DocumentType != nil:
			return dErrors.New(dErrors.CodeInvalidState, "Please specify the type of document")
		case w.Step == models.StepSelectType:
			return dErrors.New(dErrors.CodeInvalidState, "Please select a document type")
		default:
			return dErrors.New(dErrors.CodeInvalidState, "Please upload a document")
		}
	})
}

// Back returns to the previous step. It is a no-op on the first step.
func (s *Service) Back(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error) {
	return s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		if w.Step > models.StepSelectType {
			w.Step--
		}
		return nil
	})
}

// taskContext is what a task needs after its wizard has been marked processing.
type taskContext struct {
	doc     analysis.Document
	docType string
	history []analysisModels.ChatMessage
}

func (s *Service) loadDocument(ctx context.Context, ref *models.DocumentRef) (analysis.Document, error) {
	doc, err := s.docs.FindByID(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return analysis.Document{}, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return analysis.Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return analysis.Document{
		ID:          doc.ID,
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Content:     doc.Content,
	}, nil
}

func requireDashboard(w *models.Wizard) error {
	if w.Step != models.StepTasks || w.Document == nil {
		return dErrors.New(dErrors.CodeInvalidState, "tasks can only run on the dashboard step")
	}
	return nil
}

// begin marks task as processing and returns the inputs captured at that
// moment. If the document cannot be loaded the task is failed with failMsg and
// rollback undoes whatever prepare added.
func (s *Service) begin(ctx context.Context, ownerID, id uuid.UUID, task models.TaskType, failMsg string,
	prepare func(*models.Wizard, *taskContext), rollback func(*models.Wizard)) (taskContext, error) {
	var tc taskContext
	var ref models.DocumentRef
	_, err := s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		if err := requireDashboard(w); err != nil {
			return err
		}
		if w.Tasks[task].Status == models.StatusProcessing {
			return dErrors.New(dErrors.CodeConflict, "task is already running")
		}
		ref = *w.Document
		if w.DocumentType != nil {
			tc.docType = string(*w.DocumentType)
		}
		if prepare != nil {
			prepare(w, &tc)
		}
		w.Tasks[task] = models.TaskResult{Status: models.StatusProcessing}
		return nil
	})
	if err != nil {
		return tc, err
	}

	doc, err := s.loadDocument(ctx, &ref)
	if err != nil {
		_, _ = s.finish(ctx, ownerID, id, ref.ID, task, func(w *models.Wizard) {
			if rollback != nil {
				rollback(w)
			}
			w.Tasks[task] = models.TaskResult{Status: models.StatusError, Error: failMsg}
		})
		return tc, err
	}
	tc.doc = doc
	return tc, nil
}

// finish applies the task outcome unless the document was replaced meanwhile.
// It runs detached from ctx so a cancelled request cannot leave the task
// stuck in processing.
func (s *Service) finish(ctx context.Context, ownerID, id, docID uuid.UUID, task models.TaskType, apply func(*models.Wizard)) (*models.Wizard, error) {
	return s.update(context.WithoutCancel(ctx), ownerID, id, func(w *models.Wizard) error {
		if w.Document == nil || w.Document.ID != docID {
			s.logger.InfoContext(ctx, "discarding stale task result",
				"wizard_id", id.String(),
				"task", string(task),
			)
			return nil
		}
		apply(w)
		return nil
	})
}

// RunTask runs verify or analyze against the uploaded document. Analyzer
// failures are recorded on the task rather than returned.
func (s *Service) RunTask(ctx context.Context, ownerID, id uuid.UUID, task models.TaskType) (*models.Wizard, error) {
	if task != models.TaskVerify && task != models.TaskAnalyze {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown task")
	}
	failMsg := msgVerifyFailed
	if task == models.TaskAnalyze {
		failMsg = msgAnalyzeFailed
	}
	tc, err := s.begin(ctx, ownerID, id, task, failMsg, nil, nil)
	if err != nil {
		return nil, err
	}

	var data any
	if task == models.TaskVerify {
		data, err = s.analyzer.Verify(ctx, tc.doc, tc.docType)
	} else {
		data, err = s.analyzer.AnalyzeAlterability(ctx, tc.doc)
	}

	result := models.TaskResult{Status: models.StatusCompleted, Data: data}
	if err != nil {
		s.logger.ErrorContext(ctx, "task failed",
			"wizard_id", id.String(),
			"task", string(task),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		result = models.TaskResult{Status: models.StatusError, Error: failMsg}
	}
	s.metrics.IncrementTask(string(task), string(result.Status))

	return s.finish(ctx, ownerID, id, tc.doc.ID, task, func(w *models.Wizard) {
		w.Tasks[task] = result
	})
}

// Chat appends the question, asks the analyzer with the earlier history and
// appends the answer. On failure the question is removed again.
func (s *Service) Chat(ctx context.Context, ownerID, id uuid.UUID, message string) (*models.Wizard, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "message is required")
	}

	tc, err := s.begin(ctx, ownerID, id, models.TaskChat, msgChatFailed,
		func(w *models.Wizard, tc *taskContext) {
			tc.history = append([]analysisModels.ChatMessage(nil), w.ChatHistory...)
			w.ChatHistory = append(w.ChatHistory, analysisModels.ChatMessage{Role: analysisModels.RoleUser, Message: message})
		},
		func(w *models.Wizard) { removeLastUserMessage(w, message) },
	)
	if err != nil {
		return nil, err
	}

	resp, err := s.analyzer.Chat(ctx, tc.doc, message, tc.history)
	if err != nil {
		s.logger.ErrorContext(ctx, "chat failed",
			"wizard_id", id.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncrementTask(string(models.TaskChat), string(models.StatusError))
		return s.finish(ctx, ownerID, id, tc.doc.ID, models.TaskChat, func(w *models.Wizard) {
			removeLastUserMessage(w, message)
			w.Tasks[models.TaskChat] = models.TaskResult{Status: models.StatusError, Error: msgChatFailed}
		})
	}

	s.metrics.IncrementTask(string(models.TaskChat), string(models.StatusCompleted))
	return s.finish(ctx, ownerID, id, tc.doc.ID, models.TaskChat, func(w *models.Wizard) {
		w.ChatHistory = append(w.ChatHistory, analysisModels.ChatMessage{Role: analysisModels.RoleAI, Message: resp.Response})
		w.Tasks[models.TaskChat] = models.TaskResult{Status: models.StatusCompleted, Data: resp}
	})
}

func removeLastUserMessage(w *models.Wizard, message string) {
	for i := len(w.ChatHistory) - 1; i >= 0; i-- {
		m := w.ChatHistory[i]
		if m.Role == analysisModels.RoleUser && m.Message == message {
			w.ChatHistory = append(w.ChatHistory[:i], w.ChatHistory[i+1:]...)
			return
		}
	}
}

// ClearChat empties the chat history and returns the chat task to pending.
func (s *Service) ClearChat(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error) {
	return s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		if w.Tasks[models.TaskChat].Status == models.StatusProcessing {
			return dErrors.New(dErrors.CodeConflict, "chat is in progress")
		}
		w.ChatHistory = []analysisModels.ChatMessage{}
		w.Tasks[models.TaskChat] = models.TaskResult{Status: models.StatusPending}
		return nil
	})
}

// Reset clears the verify and analyze results and any task error. Chat
// history is kept.
func (s *Service) Reset(ctx context.Context, ownerID, id uuid.UUID) (*models.Wizard, error) {
	return s.update(ctx, ownerID, id, func(w *models.Wizard) error {
		for _, t := range []models.TaskType{models.TaskVerify, models.TaskAnalyze} {
			if w.Tasks[t].Status != models.StatusProcessing {
				w.Tasks[t] = models.TaskResult{Status: models.StatusPending}
			}
		}
		if chat := w.Tasks[models.TaskChat]; chat.Status == models.StatusError {
			w.Tasks[models.TaskChat] = models.TaskResult{Status: models.StatusPending}
		}
		return nil
	})
}

// Summary asks the analyzer for a summary of the uploaded document. It is not
// tracked as a task.
func (s *Service) Summary(ctx context.Context, ownerID, id uuid.UUID) (analysisModels.Summary, error) {
	w, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return analysisModels.Summary{}, err
	}
	if w.Document == nil {
		return analysisModels.Summary{}, dErrors.New(dErrors.CodeInvalidState, "Please upload a document")
	}
	doc, err := s.loadDocument(ctx, w.Document)
	if err != nil {
		return analysisModels.Summary{}, err
	}
	summary, err := s.analyzer.Summarize(ctx, doc)
	if err != nil {
		s.logger.ErrorContext(ctx, "summary failed",
			"wizard_id", id.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return analysisModels.Summary{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Document summary failed")
	}
	return summary, nil
}

package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	analysisModels "docverify/internal/analysis/models"
	"docverify/internal/documents"
	dErrors "docverify/pkg/domain-errors"
)

// Step is a wizard page. The flow is strictly linear.
type Step int

const (
	StepSelectType Step = 1
	StepUpload     Step = 2
	StepTasks      Step = 3
)

type TaskType string

const (
	TaskVerify  TaskType = "verify"
	TaskAnalyze TaskType = "analyze"
	TaskChat    TaskType = "chat"
)

// TaskTypes lists the dashboard tasks in display order.
var TaskTypes = []TaskType{TaskVerify, TaskAnalyze, TaskChat}

// ParseTaskType accepts the runnable task names. Chat is driven through its
// own endpoint and is not runnable here.
func ParseTaskType(s string) (TaskType, error) {
	switch t := TaskType(strings.ToLower(strings.TrimSpace(s))); t {
	case TaskVerify, TaskAnalyze:
		return t, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown task")
	}
}

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusError      TaskStatus = "error"
)

// TaskResult holds the latest outcome of one task. Data is a
// VerificationResult or AlterabilityAnalysis once completed.
type TaskResult struct {
	Status TaskStatus `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// DocumentRef points at the uploaded file without carrying its bytes.
type DocumentRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Wizard is one pass through type selection, upload and the task dashboard.
type Wizard struct {
	ID           uuid.UUID                    `json:"id"`
	OwnerID      uuid.UUID                    `json:"owner_id"`
	Step         Step                         `json:"step"`
	DocumentType *documents.DocumentType      `json:"document_type"`
	CustomType   string                       `json:"custom_type,omitempty"`
	Document     *DocumentRef                 `json:"document"`
	Tasks        map[TaskType]TaskResult      `json:"tasks"`
	ChatHistory  []analysisModels.ChatMessage `json:"chat_history"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

func NewWizard(id, ownerID uuid.UUID, now time.Time) *Wizard {
	w := &Wizard{
		ID:          id,
		OwnerID:     ownerID,
		Step:        StepSelectType,
		ChatHistory: []analysisModels.ChatMessage{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	w.ResetTasks()
	return w
}

// ResetTasks puts every task back to pending.
func (w *Wizard) ResetTasks() {
	w.Tasks = make(map[TaskType]TaskResult, len(TaskTypes))
	for _, t := range TaskTypes {
		w.Tasks[t] = TaskResult{Status: StatusPending}
	}
}

// CanProceed reports whether Next may leave the current step.
func (w *Wizard) CanProceed() bool {
	switch w.Step {
	case StepSelectType:
		if w.DocumentType == nil {
			return false
		}
		return *w.DocumentType != documents.TypeOther || strings.TrimSpace(w.CustomType) != ""
	case StepUpload:
		return w.Document != nil
	default:
		return false
	}
}

// Clone returns a copy that shares no mutable state with w.
func (w *Wizard) Clone() *Wizard {
	c := *w
	if w.DocumentType != nil {
		t := *w.DocumentType
		c.DocumentType = &t
	}
	if w.Document != nil {
		d := *w.Document
		c.Document = &d
	}
	c.Tasks = make(map[TaskType]TaskResult, len(w.Tasks))
	for k, v := range w.Tasks {
		c.Tasks[k] = v
	}
	c.ChatHistory = slices.Clone(w.ChatHistory)
	if c.ChatHistory == nil {
		c.ChatHistory = []analysisModels.ChatMessage{}
	}
	return &c
}

type SelectTypeRequest struct {
	DocumentType string `json:"document_type"`
	CustomType   string `json:"custom_type"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

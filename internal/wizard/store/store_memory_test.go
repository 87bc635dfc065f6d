package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	analysisModels "docverify/internal/analysis/models"
	"docverify/internal/wizard/models"
	"docverify/pkg/platform/sentinel"
)

type WizardStoreSuite struct {
	suite.Suite
	store *InMemoryWizardStore
}

func TestWizardStoreSuite(t *testing.T) {
	suite.Run(t, new(WizardStoreSuite))
}

func (s *WizardStoreSuite) SetupTest() {
	s.store = New()
}

func (s *WizardStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	w := models.NewWizard(uuid.New(), uuid.New(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))
	s.ErrorIs(s.store.Create(ctx, w), sentinel.ErrConflict)

	found, err := s.store.FindByID(ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(w, found)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *WizardStoreSuite) TestReturnedWizardsAreCopies() {
	ctx := context.Background()
	w := models.NewWizard(uuid.New(), uuid.New(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))

	found, err := s.store.FindByID(ctx, w.ID)
	s.Require().NoError(err)
	found.Tasks[models.TaskVerify] = models.TaskResult{Status: models.StatusCompleted}
	found.ChatHistory = append(found.ChatHistory, analysisModels.ChatMessage{Role: analysisModels.RoleUser, Message: "hi"})

	again, err := s.store.FindByID(ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, again.Tasks[models.TaskVerify].Status)
	s.Empty(again.ChatHistory)
}

func (s *WizardStoreSuite) TestExecute() {
	ctx := context.Background()
	w := models.NewWizard(uuid.New(), uuid.New(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))

	s.Run("saves the mutation", func() {
		updated, err := s.store.Execute(ctx, w.ID, func(cur *models.Wizard) error {
			cur.Step = models.StepUpload
			return nil
		})
		s.Require().NoError(err)
		s.Equal(models.StepUpload, updated.Step)

		found, err := s.store.FindByID(ctx, w.ID)
		s.Require().NoError(err)
		s.Equal(models.StepUpload, found.Step)
	})

	s.Run("discards the mutation when fn fails", func() {
		boom := errors.New("boom")
		_, err := s.store.Execute(ctx, w.ID, func(cur *models.Wizard) error {
			cur.Step = models.StepTasks
			return boom
		})
		s.ErrorIs(err, boom)

		found, err := s.store.FindByID(ctx, w.ID)
		s.Require().NoError(err)
		s.Equal(models.StepUpload, found.Step)
	})

	s.Run("unknown wizard", func() {
		_, err := s.store.Execute(ctx, uuid.New(), func(*models.Wizard) error { return nil })
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WizardStoreSuite) TestDelete() {
	ctx := context.Background()
	w := models.NewWizard(uuid.New(), uuid.New(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))
	s.Require().NoError(s.store.Delete(ctx, w.ID))
	s.ErrorIs(s.store.Delete(ctx, w.ID), sentinel.ErrNotFound)
}

package task

import (
	"context"
	"strings"
	"time"

	"github.com/georgemunganga/life360-ops/internal/apperr"
	"github.com/georgemunganga/life360-ops/internal/forms"
	"github.com/georgemunganga/life360-ops/internal/modules/provider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Task, error)
	Add(ctx context.Context, req TaskRequest) (*Task, error)
	// Update keeps the previous value of every field left empty in req.
	Update(ctx context.Context, id string, req TaskRequest) (*Task, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger, now: time.Now}
}

func (s *service) List(ctx context.Context) ([]*Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		t.Provider = normalized(forms.Deref(t.Provider))
	}
	return tasks, nil
}

func (s *service) Add(ctx context.Context, req TaskRequest) (*Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("Task needs a title.")
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = StatusOpen
	}
	t := &Task{
		ID:        uuid.New(),
		Title:     title,
		Provider:  normalized(req.Provider),
		Assignee:  forms.Optional(req.Assignee),
		DueDate:   forms.ParseDate(req.DueDate),
		Status:    status,
		Notes:     forms.Optional(req.Notes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("task added", zap.String("task_id", t.ID.String()), zap.String("title", t.Title))
	return t, nil
}

func (s *service) Update(ctx context.Context, id string, req TaskRequest) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(req.Title); v != "" {
		t.Title = v
	}
	if p := normalized(req.Provider); p != nil {
		t.Provider = p
	}
	if v := forms.Optional(req.Assignee); v != nil {
		t.Assignee = v
	}
	if d := forms.ParseDate(req.DueDate); d != nil {
		t.DueDate = d
	}
	if v := strings.TrimSpace(req.Status); v != "" {
		t.Status = v
	}
	if v := forms.Optional(req.Notes); v != nil {
		t.Notes = v
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("task updated", zap.String("task_id", t.ID.String()), zap.String("status", t.Status))
	return t, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", zap.String("task_id", id))
	return nil
}

func normalized(p string) *string {
	return forms.Optional(provider.Normalize(strings.TrimSpace(p)))
}

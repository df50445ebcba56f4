package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fathima-sithara/contacts-service/internal/metrics"
	"github.com/fathima-sithara/contacts-service/internal/repository"
	"go.uber.org/zap"
)

// LabelService manages the label names a user can tag contacts with. Labels
// are referenced by name from contacts, so deleting or renaming one leaves
// existing contacts untouched.
type LabelService struct {
	repo    repository.LabelRepository
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewLabelService(repo repository.LabelRepository, m *metrics.Metrics, logger *zap.Logger) *LabelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelService{repo: repo, metrics: m, log: logger}
}

func (s *LabelService) Exists(ctx context.Context, username, name string) bool {
	ok, err := s.repo.Exists(ctx, username, strings.TrimSpace(name))
	if err != nil {
		s.log.Error("check label failed", zap.String("username", username), zap.Error(err))
		return false
	}
	return ok
}

func (s *LabelService) Create(ctx context.Context, username, name string) (err error) {
	defer func() { s.metrics.Observe("create_label", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return validationError("Missing 'label_name' field")
	}
	err = s.repo.Create(ctx, username, name)
	if errors.Is(err, repository.ErrDuplicate) {
		return conflictError("Label already exists", err)
	}
	if err != nil {
		s.log.Error("create label failed", zap.String("username", username), zap.Error(err))
		return storeError("An error occurred while creating the label.", err)
	}
	return nil
}

func (s *LabelService) List(ctx context.Context, username string) (labels []string, err error) {
	defer func() { s.metrics.Observe("list_labels", err) }()

	labels, err = s.repo.List(ctx, username)
	if err != nil {
		s.log.Error("list labels failed", zap.String("username", username), zap.Error(err))
		return nil, storeError("An error occurred while fetching labels.", err)
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}

func (s *LabelService) Delete(ctx context.Context, username, name string) (err error) {
	defer func() { s.metrics.Observe("delete_label", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return validationError("Missing 'label_name' field")
	}
	deleted, err := s.repo.Delete(ctx, username, name)
	if err != nil {
		s.log.Error("delete label failed", zap.String("username", username), zap.Error(err))
		return storeError("An error occurred while deleting the label.", err)
	}
	if !deleted {
		return notFoundError("Label not found.")
	}
	return nil
}

func (s *LabelService) Rename(ctx context.Context, username, oldName, newName string) (err error) {
	defer func() { s.metrics.Observe("rename_label", err) }()

	oldName, newName = strings.TrimSpace(oldName), strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return validationError("Missing 'old_label_name' or 'new_label_name' field")
	}
	modified, err := s.repo.Rename(ctx, username, oldName, newName)
	if errors.Is(err, repository.ErrDuplicate) {
		return conflictError("Label already exists", err)
	}
	if err != nil {
		s.log.Error("rename label failed", zap.String("username", username), zap.Error(err))
		return storeError("An error occurred while updating the label.", err)
	}
	if !modified {
		return notFoundError("Label not found or no changes made.")
	}
	return nil
}

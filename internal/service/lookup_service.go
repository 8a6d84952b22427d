package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// IntakeLookups bundles the classifiers the intake form offers.
type IntakeLookups struct {
	Categories []domain.Category
	Modules    []domain.Module
	Channels   []domain.Channel
	Stages     []domain.Stage
}

// LookupService serves static classifier data for the intake form.
type LookupService struct {
	lookups repository.LookupRepository
	stages  repository.StageRepository
}

// NewLookupService constructs the service.
func NewLookupService(lookups repository.LookupRepository, stages repository.StageRepository) *LookupService {
	return &LookupService{lookups: lookups, stages: stages}
}

// Intake returns every active classifier plus the stage pipeline.
func (s *LookupService) Intake(ctx context.Context) (*IntakeLookups, error) {
	categories, err := s.lookups.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	modules, err := s.lookups.ListModules(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	channels, err := s.lookups.ListChannels(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stages, err := s.stages.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &IntakeLookups{
		Categories: categories,
		Modules:    modules,
		Channels:   channels,
		Stages:     stages,
	}, nil
}

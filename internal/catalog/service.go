// Package catalog manages the service and runbook registry that incidents
// are tracked against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/opsledger/opsledger/internal/domain"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Service implements catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateServiceInput contains data for service creation.
type CreateServiceInput struct {
	Name        string
	Slug        string
	Description string
}

// CreateService registers a new service. The slug is derived from the name
// when not given and must be unique per owner.
func (s *Service) CreateService(ctx context.Context, ownerID string, input CreateServiceInput) (*domain.Service, error) {
	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	existing, err := s.repo.GetServiceBySlug(ctx, ownerID, slug)
	if err != nil && !errors.Is(err, ErrServiceNotFound) {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if existing != nil {
		return nil, ErrSlugExists
	}

	svc := &domain.Service{
		OwnerID:     ownerID,
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

// GetService returns the service with the given id.
func (s *Service) GetService(ctx context.Context, ownerID, id string) (*domain.Service, error) {
	return s.repo.GetServiceByID(ctx, ownerID, id)
}

// ListServices returns all services for the owner.
func (s *Service) ListServices(ctx context.Context, ownerID string) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, ownerID)
}

// UpdateServiceInput contains fields to update on a service. Nil fields are
// left unchanged.
type UpdateServiceInput struct {
	Name        *string
	Description *string
}

// UpdateService applies a partial update to a service.
func (s *Service) UpdateService(ctx context.Context, ownerID, id string, input UpdateServiceInput) (*domain.Service, error) {
	svc, err := s.repo.GetServiceByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		svc.Name = *input.Name
	}
	if input.Description != nil {
		svc.Description = *input.Description
	}

	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return svc, nil
}

// DeleteService removes a service and, via cascade, its runbooks and
// incidents.
func (s *Service) DeleteService(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteService(ctx, ownerID, id)
}

// CreateRunbookInput contains data for runbook creation.
type CreateRunbookInput struct {
	ServiceID string
	Title     string
	Status    domain.RunbookStatus
	Version   int
	Summary   string
}

// CreateRunbook attaches a new runbook to a service.
func (s *Service) CreateRunbook(ctx context.Context, ownerID string, input CreateRunbookInput) (*domain.Runbook, error) {
	if _, err := s.repo.GetServiceByID(ctx, ownerID, input.ServiceID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.RunbookStatusDraft
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunbookStatus, status)
	}

	version := input.Version
	if version <= 0 {
		version = 1
	}

	rb := &domain.Runbook{
		OwnerID:   ownerID,
		ServiceID: input.ServiceID,
		Title:     input.Title,
		Status:    status,
		Version:   version,
		Summary:   input.Summary,
	}
	if err := s.repo.CreateRunbook(ctx, rb); err != nil {
		return nil, fmt.Errorf("create runbook: %w", err)
	}
	return rb, nil
}

// GetRunbook returns the runbook with the given id.
func (s *Service) GetRunbook(ctx context.Context, ownerID, id string) (*domain.Runbook, error) {
	return s.repo.GetRunbookByID(ctx, ownerID, id)
}

// ListRunbooks returns all runbooks for a service.
func (s *Service) ListRunbooks(ctx context.Context, ownerID, serviceID string) ([]domain.Runbook, error) {
	if _, err := s.repo.GetServiceByID(ctx, ownerID, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListRunbooksByService(ctx, ownerID, serviceID)
}

// UpdateRunbookInput contains fields to update on a runbook. Nil fields are
// left unchanged.
type UpdateRunbookInput struct {
	Title   *string
	Status  *domain.RunbookStatus
	Version *int
	Summary *string
}

// UpdateRunbook applies a partial update to a runbook.
func (s *Service) UpdateRunbook(ctx context.Context, ownerID, id string, input UpdateRunbookInput) (*domain.Runbook, error) {
	rb, err := s.repo.GetRunbookByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		rb.Title = *input.Title
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRunbookStatus, *input.Status)
		}
		rb.Status = *input.Status
	}
	if input.Version != nil {
		rb.Version = *input.Version
	}
	if input.Summary != nil {
		rb.Summary = *input.Summary
	}

	if err := s.repo.UpdateRunbook(ctx, rb); err != nil {
		return nil, fmt.Errorf("update runbook: %w", err)
	}
	return rb, nil
}

// DeleteRunbook removes a runbook. Incidents already referencing it keep
// their recorded runbook title.
func (s *Service) DeleteRunbook(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteRunbook(ctx, ownerID, id)
}

// LatestRunbookForService returns the runbook that new incidents should be
// attached to: the newest published one, falling back to the newest draft.
func (s *Service) LatestRunbookForService(ctx context.Context, ownerID, serviceID string) (*domain.Runbook, error) {
	return s.repo.LatestRunbookForService(ctx, ownerID, serviceID)
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

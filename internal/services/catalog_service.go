package services

import (
	"context"
	"log"
	"strings"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

// CatalogService manages the services customers can book.
type CatalogService struct {
	store storage.ServiceStore
}

func NewCatalogService(store storage.ServiceStore) *CatalogService {
	return &CatalogService{store: store}
}

// List returns services by title. Non-admins only ever see active ones;
// admins may narrow with active.
func (s *CatalogService) List(ctx context.Context, actor Actor, active *bool) ([]models.Service, error) {
	if !actor.IsAdmin() {
		yes := true
		active = &yes
	}
	services, err := s.store.ListServices(ctx, storage.ServiceFilter{Active: active})
	if err != nil {
		return nil, apperr.From(err)
	}
	return services, nil
}

func (s *CatalogService) Get(ctx context.Context, actor Actor, rawID string) (*models.Service, error) {
	id, err := ParseID(rawID, "service")
	if err != nil {
		return nil, err
	}
	service, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, storeErr(err, errServiceGone)
	}
	if !service.IsActive && !actor.IsAdmin() {
		return nil, apperr.NotFound(errServiceGone)
	}
	return &service, nil
}

type CreateServiceInput struct {
	Title    string   `json:"title" validate:"required"`
	Duration *int     `json:"duration" validate:"omitempty,min=0"`
	Price    *float64 `json:"price" validate:"required,min=0"`
	IsActive *bool    `json:"isActive"`
}

func (s *CatalogService) Create(ctx context.Context, in CreateServiceInput) (*models.Service, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	service := models.Service{
		Title:    in.Title,
		Duration: models.DefaultServiceDuration,
		Price:    *in.Price,
		IsActive: true,
	}
	if in.Duration != nil {
		service.Duration = *in.Duration
	}
	if in.IsActive != nil {
		service.IsActive = *in.IsActive
	}
	if err := s.store.CreateService(ctx, &service); err != nil {
		return nil, storeErr(err, errServiceGone)
	}
	log.Printf("Service %q created (%s)", service.Title, service.ID.Hex())
	return &service, nil
}

// UpdateServiceInput leaves nil fields untouched.
type UpdateServiceInput struct {
	Title    *string  `json:"title" validate:"omitempty,min=1"`
	Duration *int     `json:"duration" validate:"omitempty,min=0"`
	Price    *float64 `json:"price" validate:"omitempty,min=0"`
	IsActive *bool    `json:"isActive"`
}

func (s *CatalogService) Update(ctx context.Context, rawID string, in UpdateServiceInput) (*models.Service, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	id, err := ParseID(rawID, "service")
	if err != nil {
		return nil, err
	}
	service, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, storeErr(err, errServiceGone)
	}
	if in.Title != nil {
		service.Title = *in.Title
	}
	if in.Duration != nil {
		service.Duration = *in.Duration
	}
	if in.Price != nil {
		service.Price = *in.Price
	}
	if in.IsActive != nil {
		service.IsActive = *in.IsActive
	}
	if err := s.store.UpdateService(ctx, service); err != nil {
		return nil, storeErr(err, errServiceGone)
	}
	return &service, nil
}

func (s *CatalogService) Delete(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID, "service")
	if err != nil {
		return err
	}
	if err := s.store.DeleteService(ctx, id); err != nil {
		return storeErr(err, errServiceGone)
	}
	return nil
}

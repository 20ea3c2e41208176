package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

func (s *Store) CreateService(ctx context.Context, service *models.Service) error {
	if service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	_, err := s.services.InsertOne(ctx, service)
	return translate(err)
}

func (s *Store) GetService(ctx context.Context, id primitive.ObjectID) (models.Service, error) {
	return findOne[models.Service](ctx, s.services, bson.M{"_id": id})
}

func (s *Store) UpdateService(ctx context.Context, service models.Service) error {
	return replaceByID(ctx, s.services, service.ID, service)
}

func (s *Store) DeleteService(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.services, id)
}

func (s *Store) ListServices(ctx context.Context, filter storage.ServiceFilter) ([]models.Service, error) {
	query := bson.M{}
	if filter.Active != nil {
		query["isActive"] = *filter.Active
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	return findAll[models.Service](ctx, s.services, query, findOptions)
}

func (s *Store) ListServicesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findAll[models.Service](ctx, s.services, byIDs(ids))
}

package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/models"
)

func (s *Store) CreateSpecialist(ctx context.Context, specialist *models.Specialist) error {
	if specialist.ID.IsZero() {
		specialist.ID = primitive.NewObjectID()
	}
	_, err := s.specialists.InsertOne(ctx, specialist)
	return translate(err)
}

func (s *Store) GetSpecialist(ctx context.Context, id primitive.ObjectID) (models.Specialist, error) {
	return findOne[models.Specialist](ctx, s.specialists, bson.M{"_id": id})
}

func (s *Store) GetSpecialistByUser(ctx context.Context, userID primitive.ObjectID) (models.Specialist, error) {
	return findOne[models.Specialist](ctx, s.specialists, bson.M{"user": userID})
}

func (s *Store) UpdateSpecialist(ctx context.Context, specialist models.Specialist) error {
	return replaceByID(ctx, s.specialists, specialist.ID, specialist)
}

func (s *Store) DeleteSpecialist(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.specialists, id)
}

func (s *Store) ListSpecialists(ctx context.Context) ([]models.Specialist, error) {
	return findAll[models.Specialist](ctx, s.specialists, bson.M{})
}

func (s *Store) ListSpecialistsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Specialist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findAll[models.Specialist](ctx, s.specialists, byIDs(ids))
}

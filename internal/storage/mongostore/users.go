package mongostore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(user.Email)
	_, err := s.users.InsertOne(ctx, user)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	user.Email = strings.ToLower(user.Email)
	return replaceByID(ctx, s.users, user.ID, user)
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.users, id)
}

func (s *Store) ListUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findAll[models.User](ctx, s.users, byIDs(ids))
}

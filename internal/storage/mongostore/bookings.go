package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	_, err := s.bookings.InsertOne(ctx, booking)
	return translate(err)
}

func (s *Store) GetBooking(ctx context.Context, id primitive.ObjectID) (models.Booking, error) {
	return findOne[models.Booking](ctx, s.bookings, bson.M{"_id": id})
}

func (s *Store) UpdateBooking(ctx context.Context, booking models.Booking) error {
	return replaceByID(ctx, s.bookings, booking.ID, booking)
}

func (s *Store) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.bookings, id)
}

func (s *Store) ListBookings(ctx context.Context, filter storage.BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if !filter.UserID.IsZero() {
		query["user"] = filter.UserID
	}
	if !filter.SpecialistID.IsZero() {
		query["specialist"] = filter.SpecialistID
	}
	if !filter.ServiceDate.IsZero() {
		query["serviceDate"] = filter.ServiceDate
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	var sort bson.D
	switch filter.Sort {
	case storage.SortStartTimeAsc:
		sort = bson.D{{Key: "startTime", Value: 1}}
	default:
		sort = bson.D{{Key: "serviceDate", Value: -1}, {Key: "startTime", Value: -1}}
	}
	return findAll[models.Booking](ctx, s.bookings, query, options.Find().SetSort(sort))
}

func (s *Store) DeleteBookingsBySpecialist(ctx context.Context, specialistID primitive.ObjectID) (int64, error) {
	result, err := s.bookings.DeleteMany(ctx, bson.M{"specialist": specialistID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (s *Store) CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.bookings.UpdateMany(ctx,
		bson.M{"status": models.StatusBooked, "endTime": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.StatusCompleted}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

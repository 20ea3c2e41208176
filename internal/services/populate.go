package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

// populateBookings hydrates the user, service and specialist (with its
// user) references of each booking, preserving order.
func populateBookings(ctx context.Context, store storage.Store, bookings []models.Booking) ([]models.BookingDetail, error) {
	var userIDs, serviceIDs, specialistIDs []primitive.ObjectID
	for _, b := range bookings {
		userIDs = append(userIDs, b.User)
		serviceIDs = append(serviceIDs, b.Service)
		specialistIDs = append(specialistIDs, b.Specialist)
	}

	specialists, err := store.ListSpecialistsByIDs(ctx, specialistIDs)
	if err != nil {
		return nil, err
	}
	specialistByID := make(map[primitive.ObjectID]models.Specialist, len(specialists))
	for _, sp := range specialists {
		specialistByID[sp.ID] = sp
		userIDs = append(userIDs, sp.User)
	}

	users, err := userSummaries(ctx, store, userIDs)
	if err != nil {
		return nil, err
	}

	services, err := store.ListServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	serviceByID := make(map[primitive.ObjectID]models.Service, len(services))
	for _, svc := range services {
		serviceByID[svc.ID] = svc
	}

	out := make([]models.BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		detail := models.BookingDetail{
			ID:          b.ID,
			User:        users[b.User],
			ServiceDate: b.ServiceDate,
			StartTime:   b.StartTime,
			EndTime:     b.EndTime,
			Status:      b.Status,
			CreatedAt:   b.CreatedAt,
		}
		if svc, ok := serviceByID[b.Service]; ok {
			detail.Service = &svc
		}
		if sp, ok := specialistByID[b.Specialist]; ok {
			detail.Specialist = sp.Detail(users[sp.User])
		}
		out = append(out, detail)
	}
	return out, nil
}

func populateBooking(ctx context.Context, store storage.Store, booking models.Booking) (*models.BookingDetail, error) {
	details, err := populateBookings(ctx, store, []models.Booking{booking})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// populateSpecialists attaches the user summary to each profile.
func populateSpecialists(ctx context.Context, store storage.Store, specialists []models.Specialist) ([]models.SpecialistDetail, error) {
	ids := make([]primitive.ObjectID, 0, len(specialists))
	for _, sp := range specialists {
		ids = append(ids, sp.User)
	}
	users, err := userSummaries(ctx, store, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.SpecialistDetail, 0, len(specialists))
	for _, sp := range specialists {
		out = append(out, *sp.Detail(users[sp.User]))
	}
	return out, nil
}

func userSummaries(ctx context.Context, store storage.Store, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	users, err := store.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]*models.UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

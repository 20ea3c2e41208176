package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	StatusBooked    BookingStatus = "booked"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Service     primitive.ObjectID `bson:"service" json:"service"`
	Specialist  primitive.ObjectID `bson:"specialist" json:"specialist"` // profile id, never the user id
	ServiceDate time.Time          `bson:"serviceDate" json:"serviceDate"`
	StartTime   time.Time          `bson:"startTime" json:"startTime"`
	EndTime     time.Time          `bson:"endTime" json:"endTime"`
	Status      BookingStatus      `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// BookingDetail is a booking with its references populated. A reference
// whose document no longer exists is left nil.
type BookingDetail struct {
	ID          primitive.ObjectID `json:"id"`
	User        *UserSummary       `json:"user"`
	Service     *Service           `json:"service"`
	Specialist  *SpecialistDetail  `json:"specialist"`
	ServiceDate time.Time          `json:"serviceDate"`
	StartTime   time.Time          `json:"startTime"`
	EndTime     time.Time          `json:"endTime"`
	Status      BookingStatus      `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

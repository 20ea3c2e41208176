package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Specialist is the bookable profile wrapping a user with role specialist.
type Specialist struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Description     string             `bson:"description" json:"description"`
	Class           string             `bson:"class" json:"class"`
	YearsExperience int                `bson:"yearsExperience" json:"yearsExperience"`
}

// SpecialistDetail is a specialist profile with its user populated.
type SpecialistDetail struct {
	ID              primitive.ObjectID `json:"id"`
	User            *UserSummary       `json:"user"`
	Description     string             `json:"description"`
	Class           string             `json:"class"`
	YearsExperience int                `json:"yearsExperience"`
}

func (s Specialist) Detail(user *UserSummary) *SpecialistDetail {
	return &SpecialistDetail{
		ID:              s.ID,
		User:            user,
		Description:     s.Description,
		Class:           s.Class,
		YearsExperience: s.YearsExperience,
	}
}

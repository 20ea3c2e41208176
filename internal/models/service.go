package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const DefaultServiceDuration = 60

type Service struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Duration int                `bson:"duration" json:"duration"` // minutes
	Price    float64            `bson:"price" json:"price"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}

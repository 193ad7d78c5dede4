package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents one car in the dealership inventory.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Brand        string             `bson:"brand" json:"brand"`
	Model        string             `bson:"model" json:"model"`
	Year         int                `bson:"year,omitempty" json:"year,omitempty"`
	Month        int                `bson:"month,omitempty" json:"month,omitempty"`
	Price        float64            `bson:"price,omitempty" json:"price,omitempty"` // in units of 10,000 TWD
	Color        string             `bson:"color,omitempty" json:"color,omitempty"`
	Displacement int                `bson:"displacement,omitempty" json:"displacement,omitempty"` // engine size in c.c.
	Transmission string             `bson:"transmission,omitempty" json:"transmission,omitempty"`
	Fuel         string             `bson:"fuel,omitempty" json:"fuel,omitempty"`
	Title        string             `bson:"title,omitempty" json:"title,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

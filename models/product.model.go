package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents an item for sale. Writer is a weak reference to the
// user that listed it. Sold and Views are monotonic counters bumped with
// atomic increments, never rewritten.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Writer      primitive.ObjectID `bson:"writer,omitempty" json:"writer,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Continents  int                `bson:"continents" json:"continents"`
	Images      []string           `bson:"images" json:"images"`
	Sold        int                `bson:"sold" json:"sold"`
	Views       int                `bson:"views" json:"views"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

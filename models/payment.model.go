package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentUser is the purchaser snapshot embedded in a payment record.
type PaymentUser struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Payment is the detailed transaction record written once per checkout:
// who bought, the raw payment-gateway payload, and the purchased line items.
// Never mutated after creation.
type Payment struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"_id,omitempty"`
	User      PaymentUser            `bson:"user" json:"user"`
	Data      map[string]interface{} `bson:"data" json:"data"`
	Product   []HistoryEntry         `bson:"product" json:"product"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

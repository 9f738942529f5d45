package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of a user's in-progress order. ID is the product id;
// a product appears at most once per cart, enforced by the add-to-cart
// handler rather than by a storage constraint.
type CartItem struct {
	ID       string `bson:"id" json:"id"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Date     int64  `bson:"date" json:"date"`
}

// HistoryEntry is an immutable purchase record appended at checkout.
type HistoryEntry struct {
	DateOfPurchase int64   `bson:"dateOfPurchase" json:"dateOfPurchase"`
	Name           string  `bson:"name" json:"name"`
	ID             string  `bson:"id" json:"id"`
	Price          float64 `bson:"price" json:"price"`
	Quantity       int     `bson:"quantity" json:"quantity"`
	PaymentID      string  `bson:"paymentId" json:"paymentId"`
}

// User represents a user in the system. Role 0 is a customer, anything else
// is an admin. Token holds the single active session credential; a new login
// overwrites it, invalidating the previous session.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Lastname string             `bson:"lastname" json:"lastname"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"`
	Role     int                `bson:"role" json:"role"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	Cart     []CartItem         `bson:"cart" json:"cart"`
	History  []HistoryEntry     `bson:"history" json:"history"`
	Token    string             `bson:"token,omitempty" json:"-"`
	TokenExp int64              `bson:"tokenExp,omitempty" json:"-"`
}

// IsAdmin reports whether the user has a non-customer role.
func (u *User) IsAdmin() bool {
	return u.Role != 0
}

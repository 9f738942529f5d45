package store

import (
	"context"
	"errors"

	"go-shop/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicateEmail is returned when inserting a user whose email is taken.
	ErrDuplicateEmail = errors.New("store: email already registered")
	// ErrInvalidID is returned when a caller-supplied id is not a valid object id.
	ErrInvalidID = errors.New("store: invalid id")
)

// PriceRange is an inclusive [Min, Max] price filter.
type PriceRange struct {
	Min float64
	Max float64
}

// SearchFilter holds the supported product filters, one field per kind
// instead of a free-form field->values map.
type SearchFilter struct {
	Continents []int
	Price      *PriceRange
}

// SearchQuery describes one page of a filtered product search. Term, when
// non-empty, restricts results to products whose title or description
// contains it (case-insensitive).
type SearchQuery struct {
	Filter SearchFilter
	Term   string
	Skip   int64
	Limit  int64
}

// UserStore owns user documents: credentials, session token, embedded cart
// and purchase history.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByToken finds the user only if its stored token equals the
	// presented one, so tokens overwritten by a later login or cleared by a
	// logout stop verifying.
	FindByToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error)
	SetToken(ctx context.Context, id primitive.ObjectID, token string, tokenExp int64) error
	ClearToken(ctx context.Context, id primitive.ObjectID) error

	// IncCartQuantity bumps the quantity of the cart entry holding productID
	// by one and returns the updated cart.
	IncCartQuantity(ctx context.Context, id primitive.ObjectID, productID string) ([]models.CartItem, error)
	// PushCartItem appends a new cart entry and returns the updated cart.
	PushCartItem(ctx context.Context, id primitive.ObjectID, item models.CartItem) ([]models.CartItem, error)
	// PullCartItem removes every cart entry holding productID and returns
	// the remaining cart.
	PullCartItem(ctx context.Context, id primitive.ObjectID, productID string) ([]models.CartItem, error)
	// RecordPurchase appends the history entries and empties the cart in a
	// single update, returning the updated user.
	RecordPurchase(ctx context.Context, id primitive.ObjectID, entries []models.HistoryEntry) (*models.User, error)
}

// ProductStore owns product documents and their monotonic counters.
type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	Search(ctx context.Context, query SearchQuery) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	// IncSold atomically bumps the sold counter; safe under concurrent
	// checkouts of the same product.
	IncSold(ctx context.Context, id string, quantity int) error
	IncViews(ctx context.Context, id string) error
}

// PaymentStore records completed transactions.
type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
}

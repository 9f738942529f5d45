package store

import (
	"context"
	"regexp"
	"time"

	"go-shop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore implements UserStore on a users collection.
type MongoUserStore struct {
	Collection *mongo.Collection
}

// NewMongoUserStore creates a MongoUserStore over db's users collection.
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{Collection: db.Collection("users")}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	if user.Cart == nil {
		user.Cart = []models.CartItem{}
	}
	if user.History == nil {
		user.History = []models.HistoryEntry{}
	}
	result, err := s.Collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicateEmail
		}
		return primitive.NilObjectID, err
	}
	id, _ := result.InsertedID.(primitive.ObjectID)
	user.ID = id
	return id, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id, "token": token})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.Collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) SetToken(ctx context.Context, id primitive.ObjectID, token string, tokenExp int64) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"token": token, "tokenExp": tokenExp}})
}

func (s *MongoUserStore) ClearToken(ctx context.Context, id primitive.ObjectID) error {
	return s.updateOne(ctx, id, bson.M{"$unset": bson.M{"token": "", "tokenExp": ""}})
}

func (s *MongoUserStore) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) IncCartQuantity(ctx context.Context, id primitive.ObjectID, productID string) ([]models.CartItem, error) {
	// The positional $ targets the cart entry matched by "cart.id".
	user, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id, "cart.id": productID},
		bson.M{"$inc": bson.M{"cart.$.quantity": 1}},
	)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

func (s *MongoUserStore) PushCartItem(ctx context.Context, id primitive.ObjectID, item models.CartItem) ([]models.CartItem, error) {
	user, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"cart": item}},
	)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

func (s *MongoUserStore) PullCartItem(ctx context.Context, id primitive.ObjectID, productID string) ([]models.CartItem, error) {
	user, err := s.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"cart": bson.M{"id": productID}}},
	)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

func (s *MongoUserStore) RecordPurchase(ctx context.Context, id primitive.ObjectID, entries []models.HistoryEntry) (*models.User, error) {
	return s.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"history": bson.M{"$each": entries}},
			"$set":  bson.M{"cart": []models.CartItem{}},
		},
	)
}

func (s *MongoUserStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// MongoProductStore implements ProductStore on a products collection.
type MongoProductStore struct {
	Collection *mongo.Collection
}

// NewMongoProductStore creates a MongoProductStore over db's products collection.
func NewMongoProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{Collection: db.Collection("products")}
}

func (s *MongoProductStore) Insert(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}
	result, err := s.Collection.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

// criteria translates the typed filter into a find document: continents is
// set-membership, price an inclusive range.
func (f SearchFilter) criteria() bson.M {
	query := bson.M{}
	if len(f.Continents) > 0 {
		query["continents"] = bson.M{"$in": f.Continents}
	}
	if f.Price != nil {
		query["price"] = bson.M{"$gte": f.Price.Min, "$lte": f.Price.Max}
	}
	return query
}

// searchCriteria adds the text constraint on top of the filters. Matching is
// a case-insensitive substring test against title or description; the
// weighted text index only informs ranking.
func searchCriteria(q SearchQuery) bson.M {
	query := q.Filter.criteria()
	if q.Term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Term), Options: "i"}
		query["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
		}
	}
	return query
}

func (s *MongoProductStore) Search(ctx context.Context, query SearchQuery) ([]models.Product, error) {
	opts := options.Find().SetSkip(query.Skip).SetLimit(query.Limit)
	cursor, err := s.Collection.Find(ctx, searchCriteria(query), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, ErrInvalidID
		}
		objectIDs = append(objectIDs, objectID)
	}

	cursor, err := s.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) IncSold(ctx context.Context, id string, quantity int) error {
	return s.inc(ctx, id, bson.M{"sold": quantity})
}

func (s *MongoProductStore) IncViews(ctx context.Context, id string) error {
	return s.inc(ctx, id, bson.M{"views": 1})
}

func (s *MongoProductStore) inc(ctx context.Context, id string, fields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$inc": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoPaymentStore implements PaymentStore on a payments collection.
type MongoPaymentStore struct {
	Collection *mongo.Collection
}

// NewMongoPaymentStore creates a MongoPaymentStore over db's payments collection.
func NewMongoPaymentStore(db *mongo.Database) *MongoPaymentStore {
	return &MongoPaymentStore{Collection: db.Collection("payments")}
}

func (s *MongoPaymentStore) Insert(ctx context.Context, payment *models.Payment) error {
	payment.CreatedAt = time.Now()
	result, err := s.Collection.InsertOne(ctx, payment)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		payment.ID = id
	}
	return nil
}

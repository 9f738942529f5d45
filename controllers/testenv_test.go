package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go-shop/controllers"
	"go-shop/middleware"
	"go-shop/models"
	"go-shop/routes"
	"go-shop/store"
	"go-shop/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserStore is an in-memory UserStore with the same per-document
// semantics as the Mongo implementation.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *memUserStore) Insert(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, store.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	if user.Cart == nil {
		user.Cart = []models.CartItem{}
	}
	if user.History == nil {
		user.History = []models.HistoryEntry{}
	}
	clone := *user
	s.users[user.ID] = &clone
	return user.ID, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memUserStore) FindByToken(_ context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.Token != token || token == "" {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memUserStore) SetToken(_ context.Context, id primitive.ObjectID, token string, tokenExp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Token = token
	user.TokenExp = tokenExp
	return nil
}

func (s *memUserStore) ClearToken(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Token = ""
	user.TokenExp = 0
	return nil
}

func (s *memUserStore) IncCartQuantity(_ context.Context, id primitive.ObjectID, productID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for i := range user.Cart {
		if user.Cart[i].ID == productID {
			user.Cart[i].Quantity++
			return append([]models.CartItem(nil), user.Cart...), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUserStore) PushCartItem(_ context.Context, id primitive.ObjectID, item models.CartItem) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	user.Cart = append(user.Cart, item)
	return append([]models.CartItem(nil), user.Cart...), nil
}

func (s *memUserStore) PullCartItem(_ context.Context, id primitive.ObjectID, productID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	remaining := []models.CartItem{}
	for _, item := range user.Cart {
		if item.ID != productID {
			remaining = append(remaining, item)
		}
	}
	user.Cart = remaining
	return append([]models.CartItem(nil), user.Cart...), nil
}

func (s *memUserStore) RecordPurchase(_ context.Context, id primitive.ObjectID, entries []models.HistoryEntry) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	user.History = append(user.History, entries...)
	user.Cart = []models.CartItem{}
	clone := *user
	return &clone, nil
}

// memProductStore is an in-memory ProductStore mirroring the Mongo search
// semantics: price range, continents membership, case-insensitive substring
// term, offset+limit pagination.
type memProductStore struct {
	mu       sync.Mutex
	order    []string
	products map[string]*models.Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: make(map[string]*models.Product)}
}

func (s *memProductStore) Insert(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	clone := *product
	s.products[product.ID.Hex()] = &clone
	s.order = append(s.order, product.ID.Hex())
	return nil
}

func (s *memProductStore) Search(_ context.Context, query store.SearchQuery) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []models.Product{}
	for _, id := range s.order {
		p := s.products[id]
		if len(query.Filter.Continents) > 0 {
			found := false
			for _, c := range query.Filter.Continents {
				if p.Continents == c {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if r := query.Filter.Price; r != nil && (p.Price < r.Min || p.Price > r.Max) {
			continue
		}
		if query.Term != "" {
			term := strings.ToLower(query.Term)
			if !strings.Contains(strings.ToLower(p.Title), term) &&
				!strings.Contains(strings.ToLower(p.Description), term) {
				continue
			}
		}
		matched = append(matched, *p)
	}

	if query.Skip >= int64(len(matched)) {
		return []models.Product{}, nil
	}
	matched = matched[query.Skip:]
	if query.Limit > 0 && query.Limit < int64(len(matched)) {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (s *memProductStore) FindByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := []models.Product{}
	for _, id := range ids {
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return nil, store.ErrInvalidID
		}
		if p, ok := s.products[id]; ok {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (s *memProductStore) IncSold(_ context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Sold += quantity
	return nil
}

func (s *memProductStore) IncViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Views++
	return nil
}

// memPaymentStore records inserted payments for assertions.
type memPaymentStore struct {
	mu       sync.Mutex
	payments []models.Payment
}

func (s *memPaymentStore) Insert(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment.ID = primitive.NewObjectID()
	s.payments = append(s.payments, *payment)
	return nil
}

type testEnv struct {
	T        *testing.T
	Router   *mux.Router
	Users    *memUserStore
	Products *memProductStore
	Payments *memPaymentStore
}

func newTestEnv(t *testing.T) *testEnv {
	utils.JwtKey = []byte("test-secret")

	env := &testEnv{
		T:        t,
		Users:    newMemUserStore(),
		Products: newMemProductStore(),
		Payments: &memPaymentStore{},
	}

	userController := controllers.NewUserController(env.Users, env.Products, env.Payments, nil)
	productController := controllers.NewProductController(env.Products, t.TempDir())
	guard := middleware.NewAuthGuard(env.Users)

	env.Router = mux.NewRouter()
	routes.RegisterRoutes(env.Router, userController, productController, guard)
	return env
}

// doJSON issues a request with an optional JSON body and optional cookies.
func (env *testEnv) doJSON(method, target string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	env.T.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a user through the API and returns its id with a
// live session cookie.
func (env *testEnv) registerAndLogin(email, password string) (primitive.ObjectID, *http.Cookie) {
	env.T.Helper()

	rec := env.doJSON(http.MethodPost, "/api/users/register", map[string]interface{}{
		"name":     "Test",
		"lastname": "User",
		"email":    email,
		"password": password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code)
	var registerResp struct {
		RegisterSuccess bool   `json:"registerSuccess"`
		Err             string `json:"err"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &registerResp))
	require.True(env.T, registerResp.RegisterSuccess, registerResp.Err)

	return env.login(email, password)
}

func (env *testEnv) login(email, password string) (primitive.ObjectID, *http.Cookie) {
	env.T.Helper()

	rec := env.doJSON(http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code)
	var loginResp struct {
		LoginSuccess bool   `json:"loginSuccess"`
		UserID       string `json:"userId"`
		Message      string `json:"message"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.True(env.T, loginResp.LoginSuccess, loginResp.Message)

	userID, err := primitive.ObjectIDFromHex(loginResp.UserID)
	require.NoError(env.T, err)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "x_auth" {
			return userID, cookie
		}
	}
	env.T.Fatal("login response did not set the x_auth cookie")
	return primitive.NilObjectID, nil
}

// seedProduct inserts a product directly into the store.
func (env *testEnv) seedProduct(title string, price float64, continents int) *models.Product {
	env.T.Helper()
	product := &models.Product{
		Title:       title,
		Description: fmt.Sprintf("%s description", title),
		Price:       price,
		Continents:  continents,
	}
	require.NoError(env.T, env.Products.Insert(context.Background(), product))
	return product
}

package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
	"unicode/utf8"

	"go-shop/middleware"
	"go-shop/models"
	"go-shop/store"
	"go-shop/utils"

	"golang.org/x/crypto/bcrypt"
)

// UserController handles registration, sessions, cart mutations and checkout.
type UserController struct {
	Users        store.UserStore
	Products     store.ProductStore
	Payments     store.PaymentStore
	EmailService *utils.EmailService
}

// NewUserController creates a new UserController.
func NewUserController(users store.UserStore, products store.ProductStore, payments store.PaymentStore, emailService *utils.EmailService) *UserController {
	return &UserController{
		Users:        users,
		Products:     products,
		Payments:     payments,
		EmailService: emailService,
	}
}

// Auth returns the authenticated user's profile, cart and history.
func (uc *UserController) Auth(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"isAuth": false, "error": true})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"_id":      user.ID,
		"isAdmin":  user.IsAdmin(),
		"isAuth":   true,
		"email":    user.Email,
		"name":     user.Name,
		"lastname": user.Lastname,
		"role":     user.Role,
		"image":    user.Image,
		"cart":     user.Cart,
		"history":  user.History,
	})
}

// Register handles user registration. The password is bcrypt-hashed here and
// only here, so later profile updates never rehash an already-hashed value.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	var body struct {
		models.User
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"registerSuccess": false, "err": "invalid input"})
		return
	}
	user = body.User
	user.Password = body.Password

	if user.Email == "" || len(user.Password) < 5 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"registerSuccess": false,
			"err":             "email and a password of at least 5 characters are required",
		})
		return
	}
	if utf8.RuneCountInString(user.Name) > 50 || utf8.RuneCountInString(user.Lastname) > 50 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"registerSuccess": false,
			"err":             "name and lastname must be at most 50 characters",
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"registerSuccess": false, "err": err.Error()})
		return
	}
	user.Password = string(hashed)
	user.Cart = []models.CartItem{}
	user.History = []models.HistoryEntry{}

	if _, err := uc.Users.Insert(r.Context(), &user); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"registerSuccess": false, "err": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"registerSuccess": true})
}

// Login checks the credentials, mints a fresh session token and persists it
// on the user record, overwriting any previous one.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"loginSuccess": false, "message": "invalid input"})
		return
	}

	user, err := uc.Users.FindByEmail(r.Context(), creds.Email)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"loginSuccess": false,
			"message":      "no user registered with that email",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"loginSuccess": false,
			"message":      "wrong password",
		})
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		writeError(w, err)
		return
	}

	// tokenExp is recorded but not consulted at verification time; the token
	// stays valid until the next login or logout replaces it.
	tokenExp := time.Now().Add(24 * time.Hour).UnixMilli()
	if err := uc.Users.SetToken(r.Context(), user.ID, token, tokenExp); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "x_auth", Value: token, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loginSuccess": true,
		"userId":       user.ID,
	})
}

// Logout clears the stored token, invalidating the session server-side.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"isAuth": false, "error": true})
		return
	}

	if err := uc.Users.ClearToken(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// AddToCart puts one unit of a product into the user's cart: if the product
// is already there its quantity goes up by one, otherwise a new entry is
// appended. The read-then-branch is per request; two concurrent adds of the
// same product can both miss the existing entry.
func (uc *UserController) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"isAuth": false, "error": true})
		return
	}

	var body struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "err": "productId is required"})
		return
	}

	current, err := uc.Users.FindByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	duplicate := false
	for _, item := range current.Cart {
		if item.ID == body.ProductID {
			duplicate = true
			break
		}
	}

	var cart []models.CartItem
	if duplicate {
		cart, err = uc.Users.IncCartQuantity(r.Context(), user.ID, body.ProductID)
	} else {
		cart, err = uc.Users.PushCartItem(r.Context(), user.ID, models.CartItem{
			ID:       body.ProductID,
			Quantity: 1,
			Date:     time.Now().UnixMilli(),
		})
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveFromCart drops every cart entry for the given product and returns
// the remaining cart together with the product documents for what is left,
// so the client can re-render without another round trip.
func (uc *UserController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"isAuth": false, "error": true})
		return
	}

	productID := r.URL.Query().Get("id")
	if productID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "err": "id is required"})
		return
	}

	cart, err := uc.Users.PullCartItem(r.Context(), user.ID, productID)
	if err != nil {
		writeError(w, err)
		return
	}

	ids := make([]string, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.ID)
	}
	productInfo, err := uc.Products.FindByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"productInfo": productInfo,
		"cart":        cart,
	})
}

type cartDetailItem struct {
	ID       string  `json:"_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// SuccessBuy records a completed payment in three sequential writes: append
// the purchase to the user's history while emptying the cart, create the
// payment record, then bump each product's sold counter one at a time. The
// steps commit independently; a failure partway through is reported as a
// failure even though the earlier writes persisted, and callers reconcile
// via the history and payment records.
func (uc *UserController) SuccessBuy(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"isAuth": false, "error": true})
		return
	}

	var body struct {
		CartDetail  []cartDetailItem       `json:"cartDetail"`
		PaymentData map[string]interface{} `json:"paymentData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "err": "invalid input"})
		return
	}

	paymentID, _ := body.PaymentData["paymentID"].(string)
	now := time.Now().UnixMilli()

	history := make([]models.HistoryEntry, 0, len(body.CartDetail))
	for _, item := range body.CartDetail {
		history = append(history, models.HistoryEntry{
			DateOfPurchase: now,
			Name:           item.Title,
			ID:             item.ID,
			Price:          item.Price,
			Quantity:       item.Quantity,
			PaymentID:      paymentID,
		})
	}

	updated, err := uc.Users.RecordPurchase(r.Context(), user.ID, history)
	if err != nil {
		writeError(w, err)
		return
	}

	payment := models.Payment{
		User: models.PaymentUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Data:    body.PaymentData,
		Product: history,
	}
	if err := uc.Payments.Insert(r.Context(), &payment); err != nil {
		writeError(w, err)
		return
	}

	// Sold counters are bumped strictly one product at a time, in input
	// order. The first failure aborts the loop and the whole call reports
	// failure even though the history append and payment record committed.
	for _, entry := range history {
		if err := uc.Products.IncSold(r.Context(), entry.ID, entry.Quantity); err != nil {
			writeError(w, err)
			return
		}
	}

	if uc.EmailService != nil {
		if err := uc.EmailService.SendPurchaseReceipt(user.Email, history); err != nil {
			log.Printf("purchase receipt email: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"cart":       updated.Cart,
		"cartDetail": []cartDetailItem{},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"err":     err.Error(),
	})
}

package routes

import (
	"net/http"

	"go-shop/controllers"
	"go-shop/middleware"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, guard *middleware.AuthGuard) {
	// Public user routes
	router.HandleFunc("/api/users/register", userController.Register).Methods("POST")
	router.HandleFunc("/api/users/login", userController.Login).Methods("POST")

	// Protected user routes: auth gate resolves the x_auth cookie first
	users := router.PathPrefix("/api/users").Subrouter()
	users.Use(guard.Middleware)
	users.HandleFunc("/auth", userController.Auth).Methods("GET")
	users.HandleFunc("/logout", userController.Logout).Methods("GET")
	users.HandleFunc("/addToCart", userController.AddToCart).Methods("POST")
	users.HandleFunc("/removeFromCart", userController.RemoveFromCart).Methods("GET")
	users.HandleFunc("/successBuy", userController.SuccessBuy).Methods("POST")

	// Product routes
	router.HandleFunc("/api/products/image", productController.UploadImage).Methods("POST")
	router.HandleFunc("/api/products/allproducts", productController.AllProducts).Methods("POST")
	router.HandleFunc("/api/products/productDetail", productController.ProductDetail).Methods("GET")
	router.HandleFunc("/api/products", productController.CreateProduct).Methods("POST")

	// Uploaded images are served back by path
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(productController.UploadDir))))
}

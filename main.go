// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"go-shop/controllers"
	"go-shop/middleware"
	"go-shop/routes"
	"go-shop/store"
	"go-shop/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	utils.JwtKey = []byte(secret)

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "shop"
	}
	db := client.Database(dbName)
	if err := utils.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatal(err)
	}

	// Stores and services
	userStore := store.NewMongoUserStore(db)
	productStore := store.NewMongoProductStore(db)
	paymentStore := store.NewMongoPaymentStore(db)
	emailService := utils.NewEmailService()
	if emailService == nil {
		log.Println("POSTMARK_API_TOKEN not set; purchase receipt emails disabled.")
	}

	// Controllers and middleware
	userController := controllers.NewUserController(userStore, productStore, paymentStore, emailService)
	productController := controllers.NewProductController(productStore, "uploads")
	guard := middleware.NewAuthGuard(userStore)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, guard)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

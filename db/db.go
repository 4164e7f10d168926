package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection        *mongo.Collection
	ExperiencesCollection *mongo.Collection
	MerchantsCollection   *mongo.Collection
	BookingsCollection    *mongo.Collection
	ItineraryCollection   *mongo.Collection
	FeedbackCollection    *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("doradb")
	UserCollection = database.Collection("users")
	ExperiencesCollection = database.Collection("experiences")
	MerchantsCollection = database.Collection("merchants")
	BookingsCollection = database.Collection("bookings")
	ItineraryCollection = database.Collection("itineraries")
	FeedbackCollection = database.Collection("feedback")
	IdempotencyCollection = database.Collection("idempotency")
}

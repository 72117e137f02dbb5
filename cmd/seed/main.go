package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"venuebook/internal/config"
	"venuebook/internal/database"
	"venuebook/internal/domain"
	"venuebook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM venues")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	venueRepo := repository.NewVenueRepository(db)

	log.Println("Creating users...")
	for i, email := range []string{"alice@example.com", "bob@example.com", "carol@example.com"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		u := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         fmt.Sprintf("User %d", i+1),
		}
		if err := userRepo.Create(ctx, &u); err != nil {
			log.Fatal("create user:", err)
		}
		log.Println("User created:", email, "/ password123")
	}

	log.Println("Creating venues...")
	venues := []domain.Venue{
		{Name: "Grand Hall", City: "Almaty", Capacity: 200, PricePerHour: 150},
		{Name: "Riverside Court", City: "Astana", Capacity: 40, PricePerHour: 60},
		{Name: "Skyline Loft", City: "Almaty", Capacity: 80, PricePerHour: 95},
		{Name: "Garden Pavilion", City: "Shymkent", Capacity: 120, PricePerHour: 75},
	}
	for i := range venues {
		venues[i].Description = fmt.Sprintf("%s in %s", venues[i].Name, venues[i].City)
		if err := venueRepo.Create(ctx, &venues[i]); err != nil {
			log.Fatal("create venue:", err)
		}
		log.Println("Venue created:", venues[i].Name)
	}

	log.Println("Seed complete")
}

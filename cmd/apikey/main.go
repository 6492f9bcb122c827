package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/ManuelReschke/MarketFox/app/models"
	"github.com/ManuelReschke/MarketFox/app/repository"
	"github.com/ManuelReschke/MarketFox/internal/pkg/database"
	"github.com/ManuelReschke/MarketFox/internal/pkg/env"
)

// Issues an API key for a user, creating the user when the email is unknown.
// Used to bootstrap the first admin.
func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/apikey/main.go <email> [role]")
		fmt.Println("  role - optionally set the user's role (customer, vendor, admin)")
		os.Exit(1)
	}

	database.SetupDatabase()
	users := repository.NewUserRepository(database.GetDB())

	user, err := users.GetByEmail(os.Args[1])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &models.User{Name: os.Args[1], Email: strings.ToLower(os.Args[1]), Role: models.ROLE_CUSTOMER, Status: models.STATUS_ACTIVE}
		if err := user.Validate(); err != nil {
			log.Fatalf("Invalid email %q: %v", os.Args[1], err)
		}
		if err := users.Create(user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		log.Printf("Created user %s", user.Email)
	} else if err != nil {
		log.Fatalf("Failed to load user %s: %v", os.Args[1], err)
	}

	if len(os.Args) > 2 {
		user.Role = os.Args[2]
		if err := user.Validate(); err != nil {
			log.Fatalf("Invalid role %q: %v", os.Args[2], err)
		}
		if err := users.Update(user); err != nil {
			log.Fatalf("Failed to update role: %v", err)
		}
	}

	key := models.APIKey{UserID: user.ID}
	raw, err := key.Issue()
	if err != nil {
		log.Fatalf("Failed to generate API key: %v", err)
	}
	if err := users.CreateAPIKey(&key); err != nil {
		log.Fatalf("Failed to store API key: %v", err)
	}

	log.Printf("Issued key %s for %s (%s)", key.KeyPrefix, user.Email, user.Role)
	fmt.Println(raw)
}

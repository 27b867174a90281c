// Package main provisions a user identity. Registration flows live outside
// the service, so deployments seed users with this tool and hand out a
// matching client certificate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"passvault/internal/db"
	"passvault/internal/models"
	"passvault/internal/repository"

	"github.com/google/uuid"
)

func main() {
	dsn := flag.String("d", "", "db address")
	username := flag.String("u", "", "username to provision")
	flag.Parse()

	if *username == "" {
		log.Fatal("username is required (-u)")
	}

	postgresDB, err := db.InitPostgres(*dsn)
	if err != nil {
		log.Fatalf("cannot init database: %v", err)
	}
	defer postgresDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user := &models.User{ID: uuid.NewString(), Username: *username}
	if err := repository.NewPostgresUserRepository(postgresDB).Create(ctx, user); err != nil {
		log.Fatalf("cannot create user: %v", err)
	}

	fmt.Printf("user %s created with id %s\n", user.Username, user.ID)
}

// seed-admin creates the bootstrap account, or resets its password and role.
//
// Usage:
//
//	POSTGRES_DSN=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
//	go run ./cmd/seed-admin -username dispatch -role controller -password '...'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/infrastructure/persistence"
	"txapp-service/internal/interface/repository"
	"txapp-service/internal/usecase"
	"txapp-service/pkg/logger"
)

func main() {
	godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("POSTGRES_DSN"), "postgres DSN")
	username := flag.String("username", envOr("ADMIN_USERNAME", "admin"), "account username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "account password, at least 8 characters")
	role := flag.String("role", string(entity.RoleAdmin), "admin, controller or driver")
	driverID := flag.Uint("driver", 0, "driver id linked to a driver account")
	flag.Parse()

	log := logger.NewLogger("info")
	defer log.Sync()

	if *dsn == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "POSTGRES_DSN and ADMIN_PASSWORD (or -dsn and -password) are required")
		os.Exit(2)
	}
	r := entity.Role(*role)
	if !r.Valid() {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	var driver *uint
	if *driverID != 0 {
		id := uint(*driverID)
		driver = &id
	}

	db, err := persistence.NewPostgres(*dsn, false)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate PostgreSQL schema", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// token signing is not used here
	auth := usecase.NewAuthService(repository.NewGormUserRepository(db), "", 0, log)
	user, err := auth.EnsureUser(ctx, *username, *password, r, driver)
	if err != nil {
		log.Fatal("Failed to seed account", "username", *username, "error", err)
	}
	log.Info("Account ready", "id", user.ID, "username", user.Username, "role", user.Role)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

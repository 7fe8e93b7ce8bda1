// Command seedadmin creates the administrator account or rotates its
// password. The password is read from the terminal without echo.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/nvoloshin/folio/internal/common"
	"github.com/nvoloshin/folio/internal/server/auth"
	"github.com/nvoloshin/folio/internal/server/config"
	"github.com/nvoloshin/folio/internal/server/models"
	"github.com/nvoloshin/folio/internal/server/repositories/repomanager"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: seedadmin -email admin@example.com [-name Admin]")
		os.Exit(2)
	}

	if err := run(context.Background(), *email, *name); err != nil {
		fmt.Fprintf(os.Stderr, "seedadmin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, email, name string) error {
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	repo := rm.Users(db)

	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return fmt.Errorf("rotating password: %w", err)
		}
		fmt.Printf("password rotated for %s\n", email)
	case errors.Is(err, common.ErrNotFound):
		user := &models.User{
			Email:        email,
			PasswordHash: hash,
			Name:         &name,
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if _, err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		fmt.Printf("admin user %s created\n", email)
	default:
		return fmt.Errorf("looking up user: %w", err)
	}

	return nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}

	return string(first), nil
}

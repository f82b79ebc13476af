package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/config"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/db"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/store"
)

// create-admin creates an admin account, or promotes an existing account
// with the given email to admin.
func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", "", "Admin email (required)")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Password for a new account (min 8 characters)")
	name := fs.String("name", "Administrator", "Full name for a new account")
	fs.StringVar(&cfg.MongoURI, "mongo", cfg.MongoURI, "MongoDB connection URI")
	fs.StringVar(&cfg.MongoDB, "db", cfg.MongoDB, "MongoDB database name")
	_ = fs.Parse(os.Args[1:])

	if *email == "" {
		fs.Usage()
		os.Exit(2)
	}

	if err := run(cfg, *email, *password, *name); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config, email, password, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := db.ConnectMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect from database: %v", err)
		}
	}()

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	svc := services.New(services.Deps{
		Users:          store.NewUserStore(database),
		Constituencies: store.NewConstituencyStore(database),
		Candidates:     store.NewCandidateStore(database),
		Elections:      store.NewElectionStore(database),
	})

	admin, err := svc.Auth.CreateAdmin(ctx, email, password, name)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Println("Admin account ready")
	fmt.Printf("Email: %s\n", admin.Email)
	fmt.Printf("ID:    %s\n", admin.ID.Hex())
	fmt.Printf("Role:  %s\n", admin.Role)
	return nil
}

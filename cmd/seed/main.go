package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"wildbook-backend/internal/config"
	"wildbook-backend/internal/infrastructure/database"
	"wildbook-backend/internal/shared/utils"
	"wildbook-backend/pkg/logger"
)

// seedAnimal mirrors one entry of data/animals.json.
type seedAnimal struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Habitat     string   `json:"habitat"`
	Longitude   float64  `json:"longitude"`
	Latitude    float64  `json:"latitude"`
}

// Loads sample data for local development.
//
//	go run ./cmd/seed            # insert sample users and animals
//	go run ./cmd/seed --delete   # wipe seeded tables instead
func main() {
	deleteData := flag.Bool("delete", false, "delete all data instead of loading it")
	dataFile := flag.String("data", "data/animals.json", "path to the sample animals file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		// production uses real environment variables
	}
	logger.Init(os.Getenv("APP_ENV"))

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		logger.Error("failed to load database config", err)
		os.Exit(1)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		logger.Error("failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	if *deleteData {
		if err := wipe(ctx, db); err != nil {
			logger.Error("failed to delete data", err)
			os.Exit(1)
		}
		logger.Info("all data deleted", nil)
		return
	}

	if err := load(ctx, db, *dataFile); err != nil {
		logger.Error("failed to load sample data", err)
		os.Exit(1)
	}
	logger.Info("sample data loaded", nil)
}

func wipe(ctx context.Context, db *database.PostgresDB) error {
	_, err := db.Pool.Exec(ctx, `TRUNCATE animal_hearts, animals, users`)
	return err
}

func load(ctx context.Context, db *database.PostgresDB, dataFile string) error {
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		return err
	}

	var animals []seedAnimal
	if err := json.Unmarshal(raw, &animals); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var authorID string
	err = db.Pool.QueryRow(ctx, `
        INSERT INTO users (email, name, password_hash, role)
        VALUES ($1, $2, $3, 'admin')
        ON CONFLICT (lower(email)) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`,
		"ranger@wildbook.dev", "Ranger", string(hash)).Scan(&authorID)
	if err != nil {
		return err
	}

	for _, a := range animals {
		slug := utils.GenerateSlug(a.Name)
		_, err := db.Pool.Exec(ctx, `
            INSERT INTO animals (name, slug, description, categories, longitude, latitude, habitat, author_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (slug) DO NOTHING`,
			a.Name, slug, a.Description, a.Categories, a.Longitude, a.Latitude, a.Habitat, authorID)
		if err != nil {
			return err
		}
	}

	logger.Info("seeded animals", map[string]interface{}{"count": len(animals)})
	return nil
}

// Command seed-db prepares a database for local development: it runs the
// migrations, loads the catalog from a JSON file, and creates an admin
// customer with a working API key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/repository"
)

type categoryJSON struct {
	Name     string `json:"name"`
	Products []struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"products"`
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		adminName    string
		adminEmail   string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&adminName, "admin-name", "Admin", "name of the seeded admin customer")
	flag.StringVar(&adminEmail, "admin-email", "admin@localhost", "email of the seeded admin customer")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed for the admin (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, adminName, adminEmail, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, adminName, adminEmail, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool, catalogFile); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	adminID, err := seedAdmin(ctx, pool, adminName, adminEmail)
	if err != nil {
		return errors.Wrap(err, "seed admin customer")
	}

	if err := seedAPIKey(ctx, pool, adminID, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, catalogFile string) error {
	slog.Info("reading catalog file", slog.String("path", catalogFile))

	data, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var categories []categoryJSON
	if err := json.Unmarshal(data, &categories); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("upserting categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		var categoryID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			c.Name,
		).Scan(&categoryID)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.Name)
		}

		for _, p := range c.Products {
			_, err := pool.Exec(ctx, `
				INSERT INTO products (name, price, category_id)
				SELECT $1, $2, $3
				WHERE NOT EXISTS (
					SELECT 1 FROM products WHERE name = $1 AND category_id = $3
				)`,
				p.Name, p.Price, categoryID,
			)
			if err != nil {
				return errors.Wrapf(err, "insert product %s", p.Name)
			}
		}

		slog.Info("seeded category",
			slog.String("name", c.Name),
			slog.Int("products", len(c.Products)),
		)
	}

	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, name, email string) (int64, error) {
	slog.Info("seeding admin customer", slog.String("email", email))

	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, roles) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, roles = EXCLUDED.roles
		RETURNING id`,
		name, email, []string{"ADMIN", "CUSTOMER"},
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "upsert admin customer")
	}

	return id, nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, customerID int64, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, `
		INSERT INTO api_keys (id, key_hash, customer_id, name, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (key_hash) DO UPDATE SET customer_id = EXCLUDED.customer_id, active = TRUE`,
		uuid.NewString(), keyHash, customerID, "Seeded admin key",
	)
	if err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("seeded API key", slog.Int64("customer_id", customerID))

	return nil
}

package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logrus.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logrus.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		logrus.Fatal("Postgres connection failed: ", err)
	}

	logrus.Info("connected to PostgreSQL")

	if err := initSchema(pool); err != nil {
		logrus.Fatal("failed to initialize schema: ", err)
	}

	return pool
}

// initSchema creates or updates the database schema
func initSchema(pool *pgxpool.Pool) error {
	ctx := context.Background()

	statements := []string{
		// -------------------------------
		// USERS
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'CUSTOMER',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		// -------------------------------
		// RESTAURANTS (MENU TREE AS JSONB)
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS restaurants (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			menu JSONB NOT NULL DEFAULT '{}',
			label_map JSONB NOT NULL DEFAULT '{}',
			metadata JSONB NOT NULL DEFAULT '{}',
			info JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		// -------------------------------
		// POLICIES (TAGGED DEFINITION AS JSONB)
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS policies (
			policy_id VARCHAR(255) PRIMARY KEY,
			restaurant_id VARCHAR(255) NOT NULL REFERENCES restaurants(id),
			name VARCHAR(255) NOT NULL,
			header VARCHAR(255) NOT NULL DEFAULT '',
			locked BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			definition JSONB NOT NULL,
			total_usages INT NULL,
			days_since_last_use INT NULL,
			begin_time TIMESTAMPTZ NULL,
			end_time TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		// -------------------------------
		// BUNDLES
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS bundles (
			bundle_id VARCHAR(255) PRIMARY KEY,
			restaurant_id VARCHAR(255) NOT NULL REFERENCES restaurants(id),
			name VARCHAR(255) NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			duration INT NOT NULL,
			fixed_credit NUMERIC(10,2) NOT NULL DEFAULT 0,
			point_multiplier NUMERIC(6,3) NULL,
			deactivated_at TIMESTAMPTZ NULL
		)`,

		`CREATE TABLE IF NOT EXISTS bundle_policies (
			bundle_id VARCHAR(255) NOT NULL REFERENCES bundles(bundle_id),
			policy_id VARCHAR(255) NOT NULL REFERENCES policies(policy_id),
			PRIMARY KEY (bundle_id, policy_id)
		)`,

		`CREATE TABLE IF NOT EXISTS bundle_ownership (
			user_id UUID NOT NULL REFERENCES users(id),
			bundle_id VARCHAR(255) NOT NULL REFERENCES bundles(bundle_id),
			purchased_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, bundle_id)
		)`,

		// -------------------------------
		// LOYALTY BALANCES
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS user_loyalty (
			user_id UUID NOT NULL REFERENCES users(id),
			restaurant_id VARCHAR(255) NOT NULL REFERENCES restaurants(id),
			points INT NOT NULL DEFAULT 0,
			credit NUMERIC(10,2) NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, restaurant_id)
		)`,

		// -------------------------------
		// TRANSACTIONS (ONE ROW PER REDEEMABLE UNIT)
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			restaurant_id VARCHAR(255) NOT NULL REFERENCES restaurants(id),
			order_id UUID NOT NULL,
			item JSONB NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			paid_price NUMERIC(10,2) NOT NULL,
			policy_id VARCHAR(255) NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'PURCHASED',
			created_at TIMESTAMPTZ NOT NULL,
			redeemed_at TIMESTAMPTZ NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_user_restaurant
			ON transactions (user_id, restaurant_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	logrus.Info("schema initialized")
	return nil
}

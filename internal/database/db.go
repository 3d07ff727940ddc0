package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/skdcommerce/storefront-api/internal/config"
)

// DSN monta a string de conexão com o PostgreSQL
func DSN(cfg config.Database) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name,
	)
}

// NewPool cria o pool de conexões pgx e aguarda o banco ficar disponível,
// com até 30 tentativas espaçadas de 1 segundo
func NewPool(ctx context.Context, cfg config.Database, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("✅ Connected to database with connection pool")
			return pool, nil
		}
		logger.Info(fmt.Sprintf("⏳ Waiting for database... (%d/30)", i+1))
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

// OpenSQL abre uma conexão database/sql (driver lib/pq) usada pelo
// repositório de configurações do site
func OpenSQL(cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// schema cria as tabelas na primeira subida. Idempotente: cada statement usa
// IF NOT EXISTS.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		sku VARCHAR(100) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		short_description TEXT,
		description TEXT,
		category VARCHAR(100),
		badge VARCHAR(100),
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		collection VARCHAR(100),
		specifications JSONB NOT NULL DEFAULT '{}'::jsonb,
		image_urls JSONB NOT NULL DEFAULT '[]'::jsonb,
		price NUMERIC(12,2) NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'Active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		order_id VARCHAR(64) NOT NULL UNIQUE,
		customer_name VARCHAR(255) NOT NULL,
		mobile VARCHAR(20) NOT NULL,
		email VARCHAR(255) NOT NULL,
		shipping_address TEXT NOT NULL,
		city VARCHAR(100) NOT NULL DEFAULT '',
		state VARCHAR(100) NOT NULL DEFAULT '',
		pincode VARCHAR(20) NOT NULL DEFAULT '',
		total_amount NUMERIC(12,2) NOT NULL,
		payment_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
		fulfilment_status VARCHAR(50),
		zoho_record_id VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL,
		quantity INTEGER NOT NULL,
		price_at_purchase NUMERIC(12,2) NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		product_sku VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS site_settings (
		key VARCHAR(100) PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders (payment_status)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)`,
}

// Bootstrap aplica o schema na subida do serviço
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	logger.Info("✅ Database schema ready")
	return nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"copart-watcher/models"
	"copart-watcher/utils"

	_ "github.com/lib/pq"
)

// PostgresStore persists lots and their price ledger in PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection pool and pings the DB
func NewPostgresStore(connStr string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresStore{db: db, logger: logger}, nil
}

// CreateTables creates the lots and price_history tables if they don't exist
func (s *PostgresStore) CreateTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS lots (
		lot_id     TEXT PRIMARY KEY,
		link       TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		title      TEXT,
		dealer     TEXT,
		price      NUMERIC(12,2) NOT NULL DEFAULT 0,
		image_urls TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		status     TEXT NOT NULL DEFAULT 'active'
	);

	CREATE TABLE IF NOT EXISTS price_history (
		id         BIGSERIAL PRIMARY KEY,
		lot_id     TEXT NOT NULL,
		price      NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_lots_status ON lots (status);
	CREATE INDEX IF NOT EXISTS idx_price_history_lot ON price_history (lot_id, id DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	s.logger.Info("Tables 'lots' and 'price_history' are ready")
	return nil
}

// UpsertLot inserts the lot or refreshes price/updated_at on conflict
func (s *PostgresStore) UpsertLot(r *models.LotRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO lots (lot_id, link, name, title, dealer, price, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (lot_id) DO UPDATE SET
			price      = EXCLUDED.price,
			updated_at = NOW()
	`, r.LotID, r.Link, r.Name, r.Title, r.Dealer, r.Price, strings.Join(r.ImageURLs, ","))
	if err != nil {
		return fmt.Errorf("upsert lot %s: %w", r.LotID, err)
	}
	return nil
}

// AppendPriceHistory records one observed price in the ledger
func (s *PostgresStore) AppendPriceHistory(lotID string, price decimal.Decimal) error {
	_, err := s.db.Exec(`
		INSERT INTO price_history (lot_id, price)
		VALUES ($1, $2)
	`, lotID, price)
	if err != nil {
		return fmt.Errorf("append history for lot %s: %w", lotID, err)
	}
	return nil
}

// LatestPrice returns the newest ledger price for the lot, ties broken by the
// later row
func (s *PostgresStore) LatestPrice(lotID string) (decimal.Decimal, bool, error) {
	var price decimal.Decimal
	err := s.db.QueryRow(`
		SELECT price FROM price_history
		WHERE lot_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, lotID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, fmt.Errorf("latest price for lot %s: %w", lotID, err)
	}
	return price, true, nil
}

// Lot fetches the persisted state of one lot
func (s *PostgresStore) Lot(lotID string) (*models.Lot, error) {
	var (
		lot    models.Lot
		images sql.NullString
	)
	err := s.db.QueryRow(`
		SELECT lot_id, link, name, title, dealer, price, image_urls, created_at, updated_at, status
		FROM lots WHERE lot_id = $1
	`, lotID).Scan(&lot.LotID, &lot.Link, &lot.Name, &lot.Title, &lot.Dealer,
		&lot.Price, &images, &lot.CreatedAt, &lot.UpdatedAt, &lot.Status)
	if err != nil {
		return nil, fmt.Errorf("load lot %s: %w", lotID, err)
	}
	if images.Valid && images.String != "" {
		lot.ImageURLs = strings.Split(images.String, ",")
	}
	return &lot, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

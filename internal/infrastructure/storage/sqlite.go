package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arvikm/upstox_threshold_bot/internal/domain"
)

// SQLiteStore is the trade journal: every confirmed fill in a run is recorded
// for operator reporting. Best-effort; the engine does not depend on it.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			instrument_key TEXT NOT NULL,
			side TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price REAL NOT NULL,
			backend TEXT NOT NULL,
			tag TEXT,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_instrument ON trades(instrument_key);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveTrade(ctx context.Context, order *domain.Order) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (instrument_key, side, quantity, price, backend, tag, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.InstrumentKey, string(order.Side), order.Quantity, order.Price,
		order.Backend, order.Tag, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		order.ID = id
	}
	return nil
}

func (s *SQLiteStore) ListTrades(ctx context.Context, limit int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, instrument_key, side, quantity, price, backend, tag, created_at
		 FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Order
	for rows.Next() {
		var o domain.Order
		var side, tag string
		if err := rows.Scan(&o.ID, &o.InstrumentKey, &side, &o.Quantity, &o.Price, &o.Backend, &tag, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		o.Side = domain.Side(side)
		o.Tag = tag
		trades = append(trades, &o)
	}
	return trades, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

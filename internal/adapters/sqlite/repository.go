package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stockAlertBot/internal/domain"
	"stockAlertBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.AlertRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/alerts.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection. WAL mode for better concurrency between the
	// polling cycles that share this store.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		threshold REAL NOT NULL,
		kind TEXT NOT NULL,
		recipient TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	);
	-- The polling cycles list active alerts on every tick.
	CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts (active);
	CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts (symbol);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- AlertRepository Implementation ---

// Create persists a new alert.
func (r *Repository) Create(ctx context.Context, alert *domain.Alert) error {
	const query = `
	INSERT INTO alerts (id, symbol, threshold, kind, recipient, active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.Symbol, alert.Threshold, string(alert.Kind), alert.Recipient,
		boolToInt(alert.Active), alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert for symbol %s: %w: %w", alert.Symbol, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Alert created", map[string]interface{}{"alertID": alert.ID, "symbol": alert.Symbol})
	return nil
}

// ListActive retrieves all currently active alerts.
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Alert, error) {
	const query = `
	SELECT id, symbol, threshold, kind, recipient, active, created_at
	FROM alerts
	WHERE active = 1
	ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	alerts := make([]*domain.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert during ListActive: %w: %w", ports.ErrQueryFailed, err)
		}
		alerts = append(alerts, alert)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return alerts, nil
}

// FindByID retrieves an alert by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Alert, error) {
	const query = `
	SELECT id, symbol, threshold, kind, recipient, active, created_at
	FROM alerts
	WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	alert, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Alert not found by ID", map[string]interface{}{"alertID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query alert by ID %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	return alert, nil
}

// Deactivate atomically flips an alert from active to inactive.
// The WHERE clause carries the race: when two cycles fire the same alert
// concurrently, SQLite serializes the updates and only the first matches a
// row, so exactly one caller observes true. Callers must gate notification
// on that return value.
func (r *Repository) Deactivate(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE alerts SET active = 0 WHERE id = ? AND active = 1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate alert %s: %w: %w", id, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for deactivate alert %s: %w: %w", id, ports.ErrUpdateFailed, err)
	}
	won := rowsAffected == 1
	r.logger.Debug(ctx, "Alert deactivation attempted", map[string]interface{}{"alertID": id, "won": won})
	return won, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanAlert scans a row into a domain.Alert struct.
func scanAlert(s scanner) (*domain.Alert, error) {
	a := &domain.Alert{}
	var kind string
	var active int
	err := s.Scan(&a.ID, &a.Symbol, &a.Threshold, &kind, &a.Recipient, &active, &a.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	a.Kind = domain.AlertKind(kind)
	a.Active = active != 0
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

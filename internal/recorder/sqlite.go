package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockTerminal/internal/model"
)

// DefaultRecentLimit applies when RecentQueries is called with a non-positive limit.
const DefaultRecentLimit = 20

// SQLiteRecorder persists query history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the HTTP and Telegram surfaces read while a query is recorded.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS queries (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			name        TEXT,
			found       INTEGER NOT NULL,
			cagr_1y     REAL,
			cagr_3y     REAL,
			cagr_5y     REAL,
			volatility  REAL,
			source      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_ts ON queries(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_symbol ON queries(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordQuery(snap *QuerySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO queries
		(id, timestamp, symbol, name, found, cagr_1y, cagr_3y, cagr_5y, volatility, source)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		snap.ID, ts.UnixMilli(), snap.Symbol, snap.Name, snap.Found,
		nullable(snap.CAGR1Y), nullable(snap.CAGR3Y), nullable(snap.CAGR5Y),
		nullable(snap.Volatility), snap.Source,
	)
	if err != nil {
		return fmt.Errorf("insert query %s: %w", snap.Symbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecentQueries(limit int) ([]QuerySnapshot, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, symbol, name, found, cagr_1y, cagr_3y, cagr_5y, volatility, source
		FROM queries ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select queries: %w", err)
	}
	defer rows.Close()

	var out []QuerySnapshot
	for rows.Next() {
		var (
			s               QuerySnapshot
			ts              int64
			name, source    sql.NullString
			c1, c3, c5, vol sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &ts, &s.Symbol, &name, &s.Found, &c1, &c3, &c5, &vol, &source); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		s.Timestamp = time.UnixMilli(ts)
		s.Name = name.String
		s.Source = source.String
		s.CAGR1Y, s.CAGR3Y, s.CAGR5Y, s.Volatility = metric(c1), metric(c3), metric(c5), metric(vol)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func nullable(m model.Metric) sql.NullFloat64 {
	return sql.NullFloat64{Float64: m.Value, Valid: m.Available}
}

func metric(v sql.NullFloat64) model.Metric {
	if !v.Valid {
		return model.NotAvailable
	}
	return model.Percent(v.Float64)
}

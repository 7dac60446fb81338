package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			period     TEXT,
			price      REAL,
			rsi        REAL,
			ma20       REAL,
			macd       REAL,
			action     TEXT,
			confidence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordAnalysis inserts one analysis row.
func (r *SQLiteRecorder) RecordAnalysis(rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var macd sql.NullFloat64
	if rec.MACD != nil {
		macd = sql.NullFloat64{Float64: *rec.MACD, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO analyses (timestamp, symbol, period, price, rsi, ma20, macd, action, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Time.Unix(), rec.Symbol, rec.Period, rec.Price, rec.RSI, rec.MA20, macd, rec.Action, rec.Confidence,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Recent returns the latest n analyses for a symbol, newest first.
func (r *SQLiteRecorder) Recent(symbol string, n int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(
		`SELECT timestamp, symbol, period, price, rsi, ma20, macd, action, confidence
		 FROM analyses WHERE symbol = ? ORDER BY timestamp DESC LIMIT ?`,
		symbol, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var ts int64
		var macd sql.NullFloat64
		if err := rows.Scan(&ts, &rec.Symbol, &rec.Period, &rec.Price, &rec.RSI, &rec.MA20, &macd, &rec.Action, &rec.Confidence); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.Time = time.Unix(ts, 0).UTC()
		if macd.Valid {
			v := macd.Float64
			rec.MACD = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

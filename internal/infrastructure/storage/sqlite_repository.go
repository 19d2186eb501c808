package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	criteria_json TEXT NOT NULL,
	total         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS strategies (
	run_id        TEXT NOT NULL REFERENCES scrape_runs(id),
	seq           INTEGER NOT NULL,
	name          TEXT NOT NULL,
	source        TEXT NOT NULL,
	link          TEXT NOT NULL,
	channel       TEXT NOT NULL,
	date          TEXT NOT NULL,
	strategy_type TEXT NOT NULL,
	asset_class   TEXT NOT NULL,
	market_regime TEXT NOT NULL,
	trading_hours TEXT NOT NULL,
	win_rate      REAL,
	cagr          REAL,
	max_drawdown  REAL,
	sharpe_ratio  REAL,
	profit_factor REAL,
	quality_score INTEGER,
	description   TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// SQLiteRepository persists scrape runs and their accepted strategies.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.StrategyRepository = (*SQLiteRepository)(nil)

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewWithDB wires an existing connection; used by tests with :memory:.
func NewWithDB(db *sql.DB) (*SQLiteRepository, error) {
	repo := &SQLiteRepository{db: db}
	if err := repo.migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Close releases the underlying connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) migrate() error {
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveRun stores the run header and every accepted record in one
// transaction.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run domain.ScrapeRun) error {
	criteriaJSON, err := json.Marshal(run.Criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("scrape_runs").
		Columns("id", "started_at", "criteria_json", "total").
		Values(run.ID, run.StartedAt.UTC().Format(time.RFC3339), string(criteriaJSON), run.TotalStrategies).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, rec := range run.Strategies {
		query, args, err := sq.Insert("strategies").
			Columns("run_id", "seq", "name", "source", "link", "channel", "date",
				"strategy_type", "asset_class", "market_regime", "trading_hours",
				"win_rate", "cagr", "max_drawdown", "sharpe_ratio", "profit_factor",
				"quality_score", "description").
			Values(run.ID, rec.Seq, rec.Name, string(rec.Source), rec.Link, rec.Channel, rec.Date,
				rec.StrategyType, rec.AssetClass, rec.MarketRegime, rec.TradingHours,
				rec.WinRate, rec.CAGR, rec.MaxDrawdown, rec.SharpeRatio, rec.ProfitFactor,
				rec.QualityScore, rec.Description).
			ToSql()
		if err != nil {
			return fmt.Errorf("build strategy insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert strategy %d: %w", rec.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns loads the newest runs with their strategies, newest first.
func (r *SQLiteRepository) RecentRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error) {
	query, args, err := sq.Select("id", "started_at", "criteria_json", "total").
		From("scrape_runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScrapeRun
	for rows.Next() {
		var (
			run          domain.ScrapeRun
			startedAt    string
			criteriaJSON string
		)
		if err := rows.Scan(&run.ID, &startedAt, &criteriaJSON, &run.TotalStrategies); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(criteriaJSON), &run.Criteria); err != nil {
			return nil, fmt.Errorf("parse criteria snapshot: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		if runs[i].Strategies, err = r.loadStrategies(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *SQLiteRepository) loadStrategies(ctx context.Context, runID string) ([]domain.StrategyRecord, error) {
	query, args, err := sq.Select("seq", "name", "source", "link", "channel", "date",
		"strategy_type", "asset_class", "market_regime", "trading_hours",
		"win_rate", "cagr", "max_drawdown", "sharpe_ratio", "profit_factor",
		"quality_score", "description").
		From("strategies").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build strategies select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	var records []domain.StrategyRecord
	for rows.Next() {
		var (
			rec    domain.StrategyRecord
			source string
		)
		if err := rows.Scan(&rec.Seq, &rec.Name, &source, &rec.Link, &rec.Channel, &rec.Date,
			&rec.StrategyType, &rec.AssetClass, &rec.MarketRegime, &rec.TradingHours,
			&rec.WinRate, &rec.CAGR, &rec.MaxDrawdown, &rec.SharpeRatio, &rec.ProfitFactor,
			&rec.QualityScore, &rec.Description); err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		rec.Source = domain.Source(source)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategies: %w", err)
	}
	return records, nil
}

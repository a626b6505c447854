package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping checks the connection is usable
func (s *SQLiteDB) Ping() error {
	return s.db.Ping()
}

// Migrate creates tables and indexes. Safe to run repeatedly.
func (s *SQLiteDB) Migrate() error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			wager_type TEXT NOT NULL,
			num_sessions INTEGER NOT NULL,
			num_games INTEGER NOT NULL,
			bet_amount TEXT NOT NULL,
			initial_capital TEXT NOT NULL,
			seed TEXT NOT NULL,
			overall_rtp REAL NOT NULL DEFAULT 0,
			total_staked TEXT NOT NULL,
			total_won TEXT NOT NULL,
			bankrupt_sessions INTEGER NOT NULL DEFAULT 0,
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS run_sessions (
			run_id TEXT NOT NULL,
			session_index INTEGER NOT NULL,
			final_capital TEXT NOT NULL,
			games_played INTEGER NOT NULL,
			total_staked TEXT NOT NULL,
			total_won TEXT NOT NULL,
			rtp REAL NOT NULL,
			terminal TEXT NOT NULL,
			PRIMARY KEY (run_id, session_index),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
	}
	for _, migration := range baseMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}

	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_wager_created ON runs(wager_type, created_at DESC)`,
	}
	for _, migration := range indexMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun stores the run and its session summaries in one transaction,
// assigning an ID and creation time when unset.
func (s *SQLiteDB) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (
		id, wager_type, num_sessions, num_games, bet_amount, initial_capital, seed,
		overall_rtp, total_staked, total_won, bankrupt_sessions, engine_version, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.WagerType, run.NumSessions, run.NumGames, run.BetAmount, run.InitialCapital,
		strconv.FormatUint(run.Seed, 10), run.OverallRTP, run.TotalStaked, run.TotalWon,
		run.BankruptSessions, run.EngineVersion, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Sessions) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO run_sessions (
			run_id, session_index, final_capital, games_played, total_staked, total_won, rtp, terminal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, ss := range run.Sessions {
			if _, err := stmt.Exec(run.ID, ss.Index, ss.FinalCapital, ss.GamesPlayed,
				ss.TotalStaked, ss.TotalWon, ss.RTP, ss.Terminal); err != nil {
				return fmt.Errorf("failed to insert session %d: %w", ss.Index, err)
			}
		}
	}

	return tx.Commit()
}

const runColumns = `id, wager_type, num_sessions, num_games, bet_amount, initial_capital, seed,
	overall_rtp, total_staked, total_won, bankrupt_sessions, engine_version, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var seed string
	err := row.Scan(
		&run.ID, &run.WagerType, &run.NumSessions, &run.NumGames, &run.BetAmount, &run.InitialCapital,
		&seed, &run.OverallRTP, &run.TotalStaked, &run.TotalWon, &run.BankruptSessions,
		&run.EngineVersion, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("run %s has malformed seed %q: %w", run.ID, seed, err)
	}
	return &run, nil
}

// GetRun retrieves a run and its session summaries by ID
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT session_index, final_capital, games_played, total_staked, total_won, rtp, terminal
		FROM run_sessions WHERE run_id = ? ORDER BY session_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	run.Sessions = []SessionSummary{}
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.Index, &ss.FinalCapital, &ss.GamesPlayed,
			&ss.TotalStaked, &ss.TotalWon, &ss.RTP, &ss.Terminal); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		run.Sessions = append(run.Sessions, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return run, nil
}

// ListRuns retrieves runs with pagination and filtering, newest first
func (s *SQLiteDB) ListRuns(query RunsQuery) (*RunsList, error) {
	whereClause := ""
	args := []any{}
	if query.WagerType != "" {
		whereClause = "WHERE wager_type = ?"
		args = append(args, strings.ToUpper(query.WagerType))
	}

	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	args = append(args, query.PerPage, offset)
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs `+whereClause+`
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

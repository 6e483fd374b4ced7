package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oricchiolab/scrnaseq-run/internal/domain"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed run history
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at dbPath. ":memory:" is accepted for tests.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive across queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a new run
func (s *Store) SaveRun(run *domain.Run) error {
	argsJSON, err := json.Marshal(run.Args)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, samplesheet, outdir, version, args, status, exit_code, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SampleSheet,
		run.Outdir,
		run.Version,
		string(argsJSON),
		string(run.Status),
		nullInt(run.ExitCode),
		run.StartedAt,
		nullTime(run.FinishedAt),
	)
	return err
}

// FinishRun records the final status and exit code of a run
func (s *Store) FinishRun(id string, status domain.RunStatus, exitCode int) error {
	res, err := s.db.Exec(`UPDATE runs SET status = ?, exit_code = ?, finished_at = ? WHERE id = ?`,
		string(status), exitCode, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *Store) GetRun(id string) (*domain.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, samplesheet, outdir, version, args, status, exit_code, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// ListOptions specifies filters for listing runs
type ListOptions struct {
	Status domain.RunStatus
	Limit  int
}

// ListRuns returns runs matching opts, newest first
func (s *Store) ListRuns(opts ListOptions) ([]*domain.Run, error) {
	query := `SELECT id, samplesheet, outdir, version, args, status, exit_code, started_at, finished_at FROM runs WHERE 1=1`
	var args []interface{}

	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}

	query += " ORDER BY started_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var status, argsJSON string
	var exitCode sql.NullInt64
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &run.SampleSheet, &run.Outdir, &run.Version, &argsJSON, &status, &exitCode, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	if argsJSON != "" && argsJSON != "null" {
		if err := json.Unmarshal([]byte(argsJSON), &run.Args); err != nil {
			return nil, err
		}
	}

	return &run, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

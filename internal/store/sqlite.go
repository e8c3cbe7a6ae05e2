package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/jobscout/jobscout-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	query          TEXT NOT NULL,
	sites          TEXT NOT NULL,
	fetched        INTEGER NOT NULL,
	stage_counts   TEXT NOT NULL,
	terminal_stage TEXT NOT NULL DEFAULT '',
	exported       INTEGER NOT NULL,
	export_path    TEXT,
	started_at     DATETIME NOT NULL,
	duration_ms    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_terminal_stage ON runs(terminal_stage);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordRun(ctx context.Context, run *model.Run) (*model.Run, error) {
	recorded := *run
	if recorded.ID == "" {
		recorded.ID = uuid.New().String()
	}

	countsJSON, err := json.Marshal(recorded.StageCounts)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal stage counts")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, sites, fetched, stage_counts, terminal_stage, exported, export_path, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recorded.ID,
		recorded.Query,
		strings.Join(recorded.Sites, ","),
		recorded.Fetched,
		string(countsJSON),
		recorded.TerminalStage,
		recorded.Exported,
		recorded.ExportPath,
		recorded.StartedAt,
		recorded.DurationMS,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &recorded, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, query, sites, fetched, stage_counts, terminal_stage, exported, export_path, started_at, duration_ms
	          FROM runs WHERE 1=1`
	var args []any

	if filter.TerminalStage != "" {
		query += ` AND terminal_stage = ?`
		args = append(args, filter.TerminalStage)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var sites, countsJSON string
		var exportPath sql.NullString

		err := rows.Scan(&r.ID, &r.Query, &sites, &r.Fetched, &countsJSON,
			&r.TerminalStage, &r.Exported, &exportPath, &r.StartedAt, &r.DurationMS)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}

		if sites != "" {
			r.Sites = strings.Split(sites, ",")
		}
		if err := json.Unmarshal([]byte(countsJSON), &r.StageCounts); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stage counts")
		}
		r.ExportPath = exportPath.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type sqliteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	// Миграция: добавление колонки sveltekit_hash если её нет
	if err := migrateAddSvelteKitHash(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT NOT NULL DEFAULT 'default',
			output TEXT NOT NULL,
			style_names TEXT NOT NULL,
			script_names TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			sveltekit_hash TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_lookup
			ON reports(project_id, output, created_at);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// migrateAddSvelteKitHash добавляет колонку sveltekit_hash к базам, созданным без неё
func migrateAddSvelteKitHash(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(reports)")
	if err != nil {
		return fmt.Errorf("check table info: %w", err)
	}
	defer rows.Close()

	hasColumn := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan column info: %w", err)
		}
		if name == "sveltekit_hash" {
			hasColumn = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read column info: %w", err)
	}
	rows.Close()

	if !hasColumn {
		if _, err := db.Exec(`ALTER TABLE reports ADD COLUMN sveltekit_hash TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add sveltekit_hash column: %w", err)
		}
	}
	return nil
}

func (s *sqliteStorage) Save(report Report) error {
	if report.ProjectID == "" {
		report.ProjectID = DefaultProjectID
	}

	styleJSON, err := json.Marshal(nonNil(report.StyleNames))
	if err != nil {
		return fmt.Errorf("marshal style names: %w", err)
	}
	scriptJSON, err := json.Marshal(nonNil(report.ScriptNames))
	if err != nil {
		return fmt.Errorf("marshal script names: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO reports (project_id, output, style_names, script_names, bytes, sveltekit_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ProjectID, report.Output, string(styleJSON), string(scriptJSON),
		report.Bytes, report.SvelteKitHash, report.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Latest(projectID, output string, count int) ([]Report, error) {
	if projectID == "" {
		projectID = DefaultProjectID
	}
	if count <= 0 {
		count = -1 // LIMIT -1 = без ограничения
	}

	rows, err := s.db.Query(
		`SELECT project_id, output, style_names, script_names, bytes, sveltekit_hash, created_at FROM (
			SELECT id, project_id, output, style_names, script_names, bytes, sveltekit_hash, created_at
			FROM reports
			WHERE project_id = ? AND output = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC`,
		projectID, output, count,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReports(rows *sql.Rows) ([]Report, error) {
	var reports []Report
	for rows.Next() {
		var r Report
		var styleJSON, scriptJSON string
		if err := rows.Scan(&r.ProjectID, &r.Output, &styleJSON, &scriptJSON, &r.Bytes, &r.SvelteKitHash, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal([]byte(styleJSON), &r.StyleNames); err != nil {
			return nil, fmt.Errorf("unmarshal style names: %w", err)
		}
		if err := json.Unmarshal([]byte(scriptJSON), &r.ScriptNames); err != nil {
			return nil, fmt.Errorf("unmarshal script names: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return reports, nil
}

func (s *sqliteStorage) Cleanup(olderThan time.Time) error {
	_, err := s.db.Exec(`DELETE FROM reports WHERE created_at < ?`, olderThan.UTC())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

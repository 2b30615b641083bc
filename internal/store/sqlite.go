package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path to the SQLite database file; the containing
// directory is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddVisit(v models.Visitor) error {
	membersJSON, err := marshalMembers(v.GroupMembers)
	if err != nil {
		slog.Error("SQLiteStore AddVisit marshal failed", "error", err, "cnic", v.CNIC)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO visits
		(type, full_name, cnic, phone, email, host, purpose, entry_time, exit_time,
		 is_group_visit, group_id, total_members, group_members, scheduled_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Type, v.FullName, v.CNIC, v.Phone, nilIfEmpty(v.Email), v.Host, v.Purpose,
		v.EntryTime, v.ExitTime, v.IsGroupVisit, nilIfEmpty(v.GroupID),
		v.TotalMembers, membersJSON, nilIfEmpty(v.ScheduledTime))
	if err != nil {
		slog.Error("SQLiteStore AddVisit failed", "error", err, "cnic", v.CNIC)
		return fmt.Errorf("failed to insert visit for %s: %w", v.CNIC, err)
	}
	slog.Debug("SQLiteStore AddVisit succeeded", "cnic", v.CNIC, "type", v.Type)
	return nil
}

func (s *SQLiteStore) GetVisits() ([]models.Visitor, error) {
	rows, err := s.db.Query(visitSelect + ` FROM visits ORDER BY entry_time`)
	if err != nil {
		slog.Error("SQLiteStore GetVisits query failed", "error", err)
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visitor
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			slog.Error("SQLiteStore GetVisits scan failed", "error", err)
			return nil, err
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visit rows: %w", err)
	}
	slog.Debug("SQLiteStore GetVisits succeeded", "count", len(visits))
	return visits, nil
}

func (s *SQLiteStore) GetVisitByCNIC(cnic string) (*models.Visitor, error) {
	row := s.db.QueryRow(visitSelect+` FROM visits WHERE cnic = ? ORDER BY entry_time DESC LIMIT 1`, cnic)
	v, err := scanVisitRow(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrVisitorNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetVisitByCNIC failed", "error", err, "cnic", cnic)
		return nil, err
	}
	return &v, nil
}

func (s *SQLiteStore) UpdateVisit(cnic string, v models.Visitor) error {
	membersJSON, err := marshalMembers(v.GroupMembers)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE visits SET
		type = ?, full_name = ?, phone = ?, email = ?, host = ?, purpose = ?,
		exit_time = ?, is_group_visit = ?, group_id = ?, total_members = ?,
		group_members = ?, scheduled_time = ?
		WHERE cnic = ?`,
		v.Type, v.FullName, v.Phone, nilIfEmpty(v.Email), v.Host, v.Purpose,
		v.ExitTime, v.IsGroupVisit, nilIfEmpty(v.GroupID), v.TotalMembers,
		membersJSON, nilIfEmpty(v.ScheduledTime), cnic)
	if err != nil {
		slog.Error("SQLiteStore UpdateVisit failed", "error", err, "cnic", cnic)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrVisitorNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteVisit(cnic string) error {
	res, err := s.db.Exec(`DELETE FROM visits WHERE cnic = ?`, cnic)
	if err != nil {
		slog.Error("SQLiteStore DeleteVisit failed", "error", err, "cnic", cnic)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrVisitorNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveSession(key, state string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions (session_key, state, updated_at) VALUES (?, ?, ?)`,
		key, state, time.Now())
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "key", key)
		return err
	}
	return nil
}

func (s *SQLiteStore) GetSession(key string) (string, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM sessions WHERE session_key = ?`, key).Scan(&state)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "key", key)
		return "", err
	}
	return state, nil
}

func (s *SQLiteStore) DeleteSession(key string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE session_key = ?`, key)
	if err != nil {
		slog.Error("SQLiteStore DeleteSession failed", "error", err, "key", key)
	}
	return err
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

// marshalMembers serializes group members for the group_members text column.
func marshalMembers(members []models.GroupMember) (string, error) {
	if len(members) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(members)
	if err != nil {
		return "", fmt.Errorf("failed to marshal group members: %w", err)
	}
	return string(data), nil
}

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// Connection pool settings for the PostgreSQL store.
const (
	MaxOpenConns    = 25
	MaxIdleConns    = 5
	ConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) AddVisit(v models.Visitor) error {
	membersJSON, err := marshalMembers(v.GroupMembers)
	if err != nil {
		slog.Error("PostgresStore AddVisit marshal failed", "error", err, "cnic", v.CNIC)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO visits
		(type, full_name, cnic, phone, email, host, purpose, entry_time, exit_time,
		 is_group_visit, group_id, total_members, group_members, scheduled_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		v.Type, v.FullName, v.CNIC, v.Phone, nilIfEmpty(v.Email), v.Host, v.Purpose,
		v.EntryTime, v.ExitTime, v.IsGroupVisit, nilIfEmpty(v.GroupID),
		v.TotalMembers, membersJSON, nilIfEmpty(v.ScheduledTime))
	if err != nil {
		slog.Error("PostgresStore AddVisit failed", "error", err, "cnic", v.CNIC)
		return fmt.Errorf("failed to insert visit for %s: %w", v.CNIC, err)
	}
	slog.Debug("PostgresStore AddVisit succeeded", "cnic", v.CNIC, "type", v.Type)
	return nil
}

func (s *PostgresStore) GetVisits() ([]models.Visitor, error) {
	rows, err := s.db.Query(visitSelect + ` FROM visits ORDER BY entry_time`)
	if err != nil {
		slog.Error("PostgresStore GetVisits query failed", "error", err)
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visitor
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			slog.Error("PostgresStore GetVisits scan failed", "error", err)
			return nil, err
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visit rows: %w", err)
	}
	slog.Debug("PostgresStore GetVisits succeeded", "count", len(visits))
	return visits, nil
}

func (s *PostgresStore) GetVisitByCNIC(cnic string) (*models.Visitor, error) {
	row := s.db.QueryRow(visitSelect+` FROM visits WHERE cnic = $1 ORDER BY entry_time DESC LIMIT 1`, cnic)
	v, err := scanVisitRow(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrVisitorNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetVisitByCNIC failed", "error", err, "cnic", cnic)
		return nil, err
	}
	return &v, nil
}

func (s *PostgresStore) UpdateVisit(cnic string, v models.Visitor) error {
	membersJSON, err := marshalMembers(v.GroupMembers)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE visits SET
		type = $1, full_name = $2, phone = $3, email = $4, host = $5, purpose = $6,
		exit_time = $7, is_group_visit = $8, group_id = $9, total_members = $10,
		group_members = $11, scheduled_time = $12
		WHERE cnic = $13`,
		v.Type, v.FullName, v.Phone, nilIfEmpty(v.Email), v.Host, v.Purpose,
		v.ExitTime, v.IsGroupVisit, nilIfEmpty(v.GroupID), v.TotalMembers,
		membersJSON, nilIfEmpty(v.ScheduledTime), cnic)
	if err != nil {
		slog.Error("PostgresStore UpdateVisit failed", "error", err, "cnic", cnic)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrVisitorNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteVisit(cnic string) error {
	res, err := s.db.Exec(`DELETE FROM visits WHERE cnic = $1`, cnic)
	if err != nil {
		slog.Error("PostgresStore DeleteVisit failed", "error", err, "cnic", cnic)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrVisitorNotFound
	}
	return nil
}

func (s *PostgresStore) SaveSession(key, state string) error {
	_, err := s.db.Exec(`INSERT INTO sessions (session_key, state, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (session_key) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		key, state, time.Now())
	if err != nil {
		slog.Error("PostgresStore SaveSession failed", "error", err, "key", key)
		return err
	}
	return nil
}

func (s *PostgresStore) GetSession(key string) (string, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM sessions WHERE session_key = $1`, key).Scan(&state)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "key", key)
		return "", err
	}
	return state, nil
}

func (s *PostgresStore) DeleteSession(key string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE session_key = $1`, key)
	if err != nil {
		slog.Error("PostgresStore DeleteSession failed", "error", err, "key", key)
	}
	return err
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL database connection")
	return s.db.Close()
}

// Package history provides access to the ets_exports table, a record of
// every ETS group-address file generated by the service.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-ets/internal/etsexport"
)

// Sources of an export.
const (
	SourceCLI = "cli"
	SourceAPI = "api"
)

// Pagination limits for List.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// timeLayout sorts lexicographically in the same order as the instants.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const selectColumns = `id, project, filename, locale, row_count, main_groups, middle_groups,
	addresses, replaced, bytes, sha256, source, created_at`

// Record describes one generated export file.
type Record struct {
	ID           string    `json:"id"`
	Project      string    `json:"project"`
	Filename     string    `json:"filename"`
	Locale       string    `json:"locale,omitempty"`
	Rows         int       `json:"rows"`
	MainGroups   int       `json:"main_groups"`
	MiddleGroups int       `json:"middle_groups"`
	Addresses    int       `json:"addresses"`
	Replaced     int       `json:"replaced"`
	Bytes        int       `json:"bytes"`
	SHA256       string    `json:"sha256"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRecord describes an export result. ID and CreatedAt are left for Create.
func NewRecord(project, locale, source string, res *etsexport.Result) *Record {
	sum := sha256.Sum256(res.Data)
	return &Record{
		Project:      project,
		Filename:     res.Filename,
		Locale:       locale,
		Rows:         res.Stats.Rows,
		MainGroups:   res.Stats.MainGroups,
		MiddleGroups: res.Stats.MiddleGroups,
		Addresses:    res.Stats.Addresses,
		Replaced:     res.Stats.Replaced,
		Bytes:        len(res.Data),
		SHA256:       hex.EncodeToString(sum[:]),
		Source:       source,
	}
}

// Filter controls which records to return.
type Filter struct {
	Project string // optional: filter by project name
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// ListResult contains the paginated export records.
type ListResult struct {
	Exports []Record `json:"exports"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// Repository defines the interface for export history operations.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Get(ctx context.Context, id string) (*Record, error)
}

// SQLiteRepository stores export records in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new export history repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new record. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = "exp-" + uuid.NewString()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ets_exports (`+selectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Project, rec.Filename, nullableString(rec.Locale),
		rec.Rows, rec.MainGroups, rec.MiddleGroups, rec.Addresses,
		rec.Replaced, rec.Bytes, rec.SHA256, rec.Source,
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting export record: %w", err)
	}

	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Get returns a single record by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM ets_exports WHERE id = ?", id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.Project != "" {
		conditions = append(conditions, "project = ?")
		args = append(args, filter.Project)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ets_exports %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting export records: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT %s FROM ets_exports %s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		selectColumns, where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying export records: %w", err)
	}
	defer rows.Close()

	exports := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating export records: %w", err)
	}

	return &ListResult{
		Exports: exports,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var locale sql.NullString
	var createdAt string

	if err := s.Scan(&rec.ID, &rec.Project, &rec.Filename, &locale,
		&rec.Rows, &rec.MainGroups, &rec.MiddleGroups, &rec.Addresses,
		&rec.Replaced, &rec.Bytes, &rec.SHA256, &rec.Source, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning export record: %w", err)
	}

	if locale.Valid {
		rec.Locale = locale.String
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing export timestamp %q: %w", createdAt, err)
	}
	rec.CreatedAt = t

	return &rec, nil
}

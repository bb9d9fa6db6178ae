package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dshills/warndiff/internal/warning"
)

// ErrNotFound is returned when a named baseline does not exist.
var ErrNotFound = errors.New("baseline not found")

// Baseline is a named, stored warning set.
type Baseline struct {
	Name      string            `json:"name"`
	Source    string            `json:"source,omitempty"`
	Commit    string            `json:"commit,omitempty"`
	Count     int               `json:"count"`
	Warnings  []warning.Warning `json:"warnings,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// BaselineRepo persists baselines in SQLite. Warnings are stored as a
// msgpack payload.
type BaselineRepo struct {
	db *DB
}

// NewBaselineRepo creates a new BaselineRepo backed by the given DB.
func NewBaselineRepo(db *DB) *BaselineRepo {
	return &BaselineRepo{db: db}
}

// Save inserts or replaces the baseline with b.Name.
func (r *BaselineRepo) Save(ctx context.Context, b Baseline) error {
	if b.Name == "" {
		return errors.New("baseline name is required")
	}
	payload, err := msgpack.Marshal(b.Warnings)
	if err != nil {
		return fmt.Errorf("encode baseline %q: %w", b.Name, err)
	}
	const query = `
		INSERT INTO baselines (name, source, commit_sha, warning_count, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			commit_sha = excluded.commit_sha,
			warning_count = excluded.warning_count,
			payload = excluded.payload,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`
	_, err = r.db.Writer.ExecContext(ctx, query, b.Name, b.Source, b.Commit, len(b.Warnings), payload)
	if err != nil {
		return fmt.Errorf("save baseline %q: %w", b.Name, err)
	}
	return nil
}

// Load returns the named baseline including its warnings.
func (r *BaselineRepo) Load(ctx context.Context, name string) (*Baseline, error) {
	const query = `
		SELECT name, source, commit_sha, warning_count, payload, created_at, updated_at
		FROM baselines WHERE name = ?`
	var (
		b                Baseline
		payload          []byte
		created, updated string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, name).
		Scan(&b.Name, &b.Source, &b.Commit, &b.Count, &payload, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load baseline %q: %w", name, err)
	}
	if err := msgpack.Unmarshal(payload, &b.Warnings); err != nil {
		return nil, fmt.Errorf("decode baseline %q: %w", name, err)
	}
	if err := b.setTimes(created, updated); err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all baselines without their warnings, most recently updated first.
func (r *BaselineRepo) List(ctx context.Context) ([]Baseline, error) {
	const query = `
		SELECT name, source, commit_sha, warning_count, created_at, updated_at
		FROM baselines ORDER BY updated_at DESC, name ASC`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	defer rows.Close()

	var result []Baseline
	for rows.Next() {
		var b Baseline
		var created, updated string
		if err := rows.Scan(&b.Name, &b.Source, &b.Commit, &b.Count, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan baseline: %w", err)
		}
		if err := b.setTimes(created, updated); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate baselines: %w", err)
	}
	return result, nil
}

// Delete removes the named baseline.
func (r *BaselineRepo) Delete(ctx context.Context, name string) error {
	const query = `DELETE FROM baselines WHERE name = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("delete baseline %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete baseline %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (b *Baseline) setTimes(created, updated string) error {
	var err error
	if b.CreatedAt, err = parseTime(created); err != nil {
		return fmt.Errorf("parse created_at for %q: %w", b.Name, err)
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return fmt.Errorf("parse updated_at for %q: %w", b.Name, err)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

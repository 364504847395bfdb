package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/tinkerharness/internal/param"
)

// DomainEntry separates entry IDs from parameter hashes.
const DomainEntry = "tinkerharness/match/v1"

// Entry is one recorded comparison.
type Entry struct {
	ID              string `json:"id"`
	TraversalSource string `json:"traversal_source"`
	Traversal       string `json:"traversal"`
	ExpectedKind    string `json:"expected_kind"`
	Expected        string `json:"expected"`
	ExpectedHash    string `json:"expected_hash"`
	Actual          string `json:"actual"`
	Matched         bool   `json:"matched"`
	Seq             int64  `json:"seq"`
}

// identity is the hashed part of an entry. Field order is fixed.
type identity struct {
	TraversalSource string `json:"traversal_source"`
	Traversal       string `json:"traversal"`
	ExpectedHash    string `json:"expected_hash"`
	Actual          string `json:"actual"`
	Matched         bool   `json:"matched"`
}

// EntryID computes the content-addressed ID of e. Seq is not part of it.
func EntryID(e Entry) (string, error) {
	data, err := json.Marshal(identity{
		TraversalSource: e.TraversalSource,
		Traversal:       e.Traversal,
		ExpectedHash:    e.ExpectedHash,
		Actual:          e.Actual,
		Matched:         e.Matched,
	})
	if err != nil {
		return "", fmt.Errorf("marshal entry identity: %w", err)
	}
	return param.HashWithDomain(DomainEntry, data), nil
}

// Record compares actual against expected and journals the outcome.
//
// Recording an identical comparison again returns the entry already
// stored, including its original seq.
func (j *Journal) Record(ctx context.Context, traversalSource, traversal string, expected param.Parameter, actual any) (Entry, error) {
	if expected == nil {
		return Entry{}, errors.New("record: expected parameter is nil")
	}

	e := Entry{
		TraversalSource: traversalSource,
		Traversal:       traversal,
		ExpectedKind:    expected.Kind().String(),
		Expected:        string(expected.Canonical()),
		ExpectedHash:    expected.Hash(),
		Actual:          param.Describe(actual),
		Matched:         param.Match(expected, actual),
	}
	id, err := EntryID(e)
	if err != nil {
		return Entry{}, fmt.Errorf("record: %w", err)
	}
	e.ID = id

	existing, err := j.entry(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("record: %w", err)
	}

	e.Seq = j.clock.Next()
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO entries
		(id, traversal_source, traversal, expected_kind, expected, expected_hash, actual, matched, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.TraversalSource,
		e.Traversal,
		e.ExpectedKind,
		e.Expected,
		e.ExpectedHash,
		e.Actual,
		e.Matched,
		e.Seq,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// A concurrent Record stored the same comparison first.
		return j.entry(ctx, id)
	}

	j.logger.Debug("Recorded comparison",
		slog.String("id", e.ID),
		slog.Int64("seq", e.Seq),
		slog.Bool("matched", e.Matched),
	)
	return e, nil
}

// Entries returns every entry in seq order.
func (j *Journal) Entries(ctx context.Context) ([]Entry, error) {
	return j.query(ctx, `
		SELECT id, traversal_source, traversal, expected_kind, expected, expected_hash, actual, matched, seq
		FROM entries
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// Mismatches returns the entries whose comparison failed, in seq order.
func (j *Journal) Mismatches(ctx context.Context) ([]Entry, error) {
	return j.query(ctx, `
		SELECT id, traversal_source, traversal, expected_kind, expected, expected_hash, actual, matched, seq
		FROM entries
		WHERE matched = 0
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

func (j *Journal) entry(ctx context.Context, id string) (Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, traversal_source, traversal, expected_kind, expected, expected_hash, actual, matched, seq
		FROM entries
		WHERE id = ?
	`, id)
	return scanEntry(row)
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID,
		&e.TraversalSource,
		&e.Traversal,
		&e.ExpectedKind,
		&e.Expected,
		&e.ExpectedHash,
		&e.Actual,
		&e.Matched,
		&e.Seq,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	return e, nil
}

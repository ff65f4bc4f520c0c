// Package runhistory persists finished simulation runs in SQL databases.
package runhistory

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kilianp07/pvsim/core/events"
	"github.com/kilianp07/pvsim/core/runstore"
)

// dialect captures what differs between the supported databases.
type dialect struct {
	driver string
	schema []string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

// SQLStore keeps runs in a SQL table. Once capacity is exceeded the oldest
// runs are pruned.
type SQLStore struct {
	db       *sql.DB
	d        dialect
	capacity int
}

var _ runstore.Store = (*SQLStore)(nil)

func open(d dialect, dsn string, capacity int) (*SQLStore, error) {
	if capacity <= 0 {
		capacity = runstore.DefaultCapacity
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLStore{db: db, d: d, capacity: capacity}, nil
}

// bind rewrites ? placeholders for dialects that number them.
func (s *SQLStore) bind(q string) string {
	if !s.d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Add inserts the run and prunes the oldest entries beyond capacity.
func (s *SQLStore) Add(e events.RunFinished) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(s.bind(`INSERT INTO runs (run_id, tariff, mode, started_at, failed, payload)
        VALUES (?, ?, ?, ?, ?, ?)`),
		e.RunID, e.Tariff, e.Mode, e.StartedAt.UnixNano(), e.Failed(), string(payload)); err != nil {
		return err
	}
	if _, err := tx.Exec(s.bind(`DELETE FROM runs WHERE seq NOT IN
        (SELECT seq FROM runs ORDER BY seq DESC LIMIT ?)`), s.capacity); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns the most recent run with the given ID.
func (s *SQLStore) Get(runID string) (events.RunFinished, error) {
	if runID == "" {
		return events.RunFinished{}, runstore.ErrNotFound
	}
	var payload string
	err := s.db.QueryRow(s.bind(`SELECT payload FROM runs WHERE run_id = ? ORDER BY seq DESC LIMIT 1`), runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return events.RunFinished{}, runstore.ErrNotFound
	}
	if err != nil {
		return events.RunFinished{}, err
	}
	var e events.RunFinished
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return events.RunFinished{}, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return e, nil
}

// List returns matching runs, newest first.
func (s *SQLStore) List(f runstore.Filter) ([]events.RunFinished, error) {
	var (
		where []string
		args  []any
	)
	if f.Tariff != "" {
		where = append(where, "tariff = ?")
		args = append(args, f.Tariff)
	}
	if f.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, f.Mode)
	}
	if !f.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if f.Failed != nil {
		where = append(where, "failed = ?")
		args = append(args, *f.Failed)
	}
	q := "SELECT payload FROM runs"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at DESC, seq DESC"

	rows, err := s.db.Query(s.bind(q), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []events.RunFinished{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e events.RunFinished
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error { return s.db.Close() }

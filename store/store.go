// Package store persists fit and sampling sessions to SQLite: session
// metadata, best-fit parameter snapshots, and posterior chain rows.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/slabfit/go-slabfit/param"
)

// ErrNotFound indicates the requested session does not exist.
var ErrNotFound = errors.New("store: session not found")

// Session kinds.
const (
	KindFit    = "fit"
	KindSample = "sample"
)

// Store handles SQLite database operations for session records.
type Store struct {
	db *sql.DB
}

// Session is one recorded fit or sampling run.
type Session struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"` // "fit" or "sample"
	Seed       int64      `json:"seed"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Fit outcome, populated by FinishFit.
	Cost        float64 `json:"cost,omitempty"`
	Generations int     `json:"generations,omitempty"`
	Evaluations int     `json:"evaluations,omitempty"`
	Converged   bool    `json:"converged,omitempty"`

	// Sampling outcome, populated by FinishSample.
	Acceptance float64 `json:"acceptance,omitempty"`
	Samples    int     `json:"samples,omitempty"`
}

// ParamRecord is a stored parameter snapshot.
type ParamRecord struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Vary  bool    `json:"vary"`
}

// Open opens (creating if needed) the session database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		seed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		cost REAL,
		generations INTEGER DEFAULT 0,
		evaluations INTEGER DEFAULT 0,
		converged INTEGER DEFAULT 0,
		acceptance REAL,
		samples INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS parameters (
		session_id TEXT NOT NULL,
		pos INTEGER NOT NULL,
		name TEXT NOT NULL,
		value REAL NOT NULL,
		low REAL NOT NULL,
		high REAL NOT NULL,
		vary INTEGER NOT NULL,
		PRIMARY KEY (session_id, pos),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS chain (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		vector TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_chain_session ON chain(session_id, idx);
	CREATE INDEX IF NOT EXISTS idx_sessions_kind ON sessions(kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Begin creates a new session record and returns it with a fresh ID.
func (s *Store) Begin(name, kind string, seed int64) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, name, kind, seed, created_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Kind, sess.Seed, sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return sess, nil
}

// FinishFit records the outcome of an optimization session.
func (s *Store) FinishFit(id string, cost float64, generations, evaluations int, converged bool) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET finished_at = ?, cost = ?, generations = ?,
		 evaluations = ?, converged = ? WHERE id = ?`,
		time.Now().UTC(), cost, generations, evaluations, converged, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// FinishSample records the outcome of a sampling session.
func (s *Store) FinishSample(id string, acceptance float64, samples int) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET finished_at = ?, acceptance = ?, samples = ? WHERE id = ?`,
		time.Now().UTC(), acceptance, samples, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SaveParameters stores a snapshot of the given parameters for the
// session, replacing any earlier snapshot.
func (s *Store) SaveParameters(id string, params []*param.Parameter) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM parameters WHERE session_id = ?`, id); err != nil {
		return err
	}
	for i, p := range params {
		_, err := tx.Exec(
			`INSERT INTO parameters (session_id, pos, name, value, low, high, vary)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, p.Name, p.Value, p.Bounds.Low, p.Bounds.High, p.Vary,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Parameters retrieves the stored parameter snapshot in saved order.
func (s *Store) Parameters(id string) ([]ParamRecord, error) {
	rows, err := s.db.Query(
		`SELECT name, value, low, high, vary FROM parameters
		 WHERE session_id = ? ORDER BY pos`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ParamRecord
	for rows.Next() {
		var r ParamRecord
		if err := rows.Scan(&r.Name, &r.Value, &r.Low, &r.High, &r.Vary); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AppendChain stores posterior samples for the session in order,
// continuing from whatever is already stored.
func (s *Store) AppendChain(id string, samples [][]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	row := tx.QueryRow(`SELECT COALESCE(MAX(idx)+1, 0) FROM chain WHERE session_id = ?`, id)
	if err := row.Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO chain (session_id, idx, vector) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, v := range samples {
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(id, next+i, string(encoded)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Chain retrieves every stored sample for the session in append order.
func (s *Store) Chain(id string) ([][]float64, error) {
	rows, err := s.db.Query(
		`SELECT vector FROM chain WHERE session_id = ? ORDER BY idx`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]float64
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, err
		}
		var v []float64
		if err := json.Unmarshal([]byte(encoded), &v); err != nil {
			return nil, fmt.Errorf("decode chain row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Session retrieves a session by ID.
func (s *Store) Session(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, name, kind, seed, created_at, finished_at, cost,
		 generations, evaluations, converged, acceptance, samples
		 FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, err
}

// Sessions lists every session, newest first.
func (s *Store) Sessions() ([]*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, name, kind, seed, created_at, finished_at, cost,
		 generations, evaluations, converged, acceptance, samples
		 FROM sessions ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(scan func(...any) error) (*Session, error) {
	var sess Session
	var finished sql.NullTime
	var cost, acceptance sql.NullFloat64
	err := scan(&sess.ID, &sess.Name, &sess.Kind, &sess.Seed, &sess.CreatedAt,
		&finished, &cost, &sess.Generations, &sess.Evaluations, &sess.Converged,
		&acceptance, &sess.Samples)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		sess.FinishedAt = &finished.Time
	}
	sess.Cost = cost.Float64
	sess.Acceptance = acceptance.Float64
	return &sess, nil
}

package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

// SQLiteStore keeps the ledger in a private in-memory SQLite database.
// Nothing touches disk; the database disappears with the process.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens a fresh in-memory ledger.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY,
		input TEXT NOT NULL,
		model TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		status TEXT NOT NULL,
		result TEXT,
		error TEXT NOT NULL DEFAULT '',
		finished_at TEXT NOT NULL DEFAULT '',
		logs TEXT,
		input_fold TEXT NOT NULL DEFAULT '',
		error_fold TEXT NOT NULL DEFAULT '',
		intent_fold TEXT NOT NULL DEFAULT '',
		payload_fold TEXT NOT NULL DEFAULT ''
	);`)
	if err != nil {
		return fmt.Errorf("init ledger schema: %w", err)
	}
	return nil
}

// Record inserts a new execution.
func (s *SQLiteStore) Record(execution domain.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := toRow(execution)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO executions
		(id, input, model, created_at, status, result, error, finished_at, logs,
		 input_fold, error_fold, intent_fold, payload_fold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.input, row.model, row.createdAt, row.status, row.result, row.err, row.finishedAt, row.logs,
		row.fold.input, row.fold.err, row.fold.intent, row.fold.payload,
	)
	if err != nil {
		return fmt.Errorf("record execution %s: %w", execution.ID, err)
	}
	return nil
}

// Amend merges patch into the stored row.
func (s *SQLiteStore) Amend(id domain.ExecutionID, patch domain.ExecutionPatch) (domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.getLocked(id)
	if err != nil {
		return domain.Execution{}, err
	}
	updated := current.Apply(patch)
	row, err := toRow(updated)
	if err != nil {
		return domain.Execution{}, err
	}
	_, err = s.db.Exec(`UPDATE executions
		SET status = ?, result = ?, error = ?, finished_at = ?, logs = ?,
		    error_fold = ?, intent_fold = ?, payload_fold = ?
		WHERE id = ?`,
		row.status, row.result, row.err, row.finishedAt, row.logs,
		row.fold.err, row.fold.intent, row.fold.payload, row.id,
	)
	if err != nil {
		return domain.Execution{}, fmt.Errorf("amend execution %s: %w", id, err)
	}
	return updated, nil
}

// Get returns one execution.
func (s *SQLiteStore) Get(id domain.ExecutionID) (domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

// List returns all executions, most recent first.
func (s *SQLiteStore) List() ([]domain.Execution, error) {
	return s.Search("", 0)
}

// Search matches term case-insensitively against input, intent, payload and
// error, the same fields MemoryStore searches. Wildcards in term are literal.
func (s *SQLiteStore) Search(term string, limit int) ([]domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	builder := strings.Builder{}
	builder.WriteString("SELECT " + columns + " FROM executions")
	var args []interface{}
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		builder.WriteString(` WHERE input_fold LIKE ? ESCAPE '\' OR error_fold LIKE ? ESCAPE '\'` +
			` OR intent_fold LIKE ? ESCAPE '\' OR payload_fold LIKE ? ESCAPE '\'`)
		args = append(args, like, like, like, like)
	}
	builder.WriteString(" ORDER BY id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, exec)
	}
	return out, rows.Err()
}

// Close releases the database; the ledger is gone afterwards.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const columns = "id, input, model, created_at, status, result, error, finished_at, logs"

func (s *SQLiteStore) getLocked(id domain.ExecutionID) (domain.Execution, error) {
	row := s.db.QueryRow("SELECT "+columns+" FROM executions WHERE id = ?", int64(id))
	exec, err := scanExecution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Execution{}, fmt.Errorf("%w: %s", domain.ErrExecutionNotFound, id)
	}
	return exec, err
}

// escapeLike makes %, _ and the escape character itself match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// foldedText holds the lower-cased copies Search compares against.
type foldedText struct {
	input   string
	err     string
	intent  string
	payload string
}

type execRow struct {
	id         int64
	input      string
	model      string
	createdAt  string
	status     string
	result     sql.NullString
	err        string
	finishedAt string
	logs       sql.NullString
	fold       foldedText
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func toRow(exec domain.Execution) (execRow, error) {
	row := execRow{
		id:        int64(exec.ID),
		input:     exec.Input,
		model:     exec.Model,
		createdAt: exec.CreatedAt.UTC().Format(time.RFC3339Nano),
		status:    string(exec.Status),
		err:       exec.Error,
		fold: foldedText{
			input: strings.ToLower(exec.Input),
			err:   strings.ToLower(exec.Error),
		},
	}
	if !exec.FinishedAt.IsZero() {
		row.finishedAt = exec.FinishedAt.UTC().Format(time.RFC3339Nano)
	}
	if exec.Result != nil {
		b, err := json.Marshal(exec.Result)
		if err != nil {
			return execRow{}, err
		}
		row.result = sql.NullString{String: string(b), Valid: true}
		row.fold.intent = strings.ToLower(exec.Result.Intent)
		row.fold.payload = strings.ToLower(exec.Result.Payload)
	}
	if exec.Logs != nil {
		b, err := json.Marshal(exec.Logs)
		if err != nil {
			return execRow{}, err
		}
		row.logs = sql.NullString{String: string(b), Valid: true}
	}
	return row, nil
}

func scanExecution(sc scanner) (domain.Execution, error) {
	var row execRow
	if err := sc.Scan(&row.id, &row.input, &row.model, &row.createdAt, &row.status,
		&row.result, &row.err, &row.finishedAt, &row.logs); err != nil {
		return domain.Execution{}, err
	}
	exec := domain.Execution{
		ID:     domain.ExecutionID(row.id),
		Input:  row.input,
		Model:  row.model,
		Status: domain.ExecutionStatus(row.status),
		Error:  row.err,
	}
	if t, err := time.Parse(time.RFC3339Nano, row.createdAt); err == nil {
		exec.CreatedAt = t
	}
	if row.finishedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.finishedAt); err == nil {
			exec.FinishedAt = t
		}
	}
	if row.result.Valid {
		var result domain.ProcessingResult
		if err := json.Unmarshal([]byte(row.result.String), &result); err != nil {
			return domain.Execution{}, fmt.Errorf("decode result of %d: %w", row.id, err)
		}
		exec.Result = &result
	}
	if row.logs.Valid {
		if err := json.Unmarshal([]byte(row.logs.String), &exec.Logs); err != nil {
			return domain.Execution{}, fmt.Errorf("decode logs of %d: %w", row.id, err)
		}
	}
	return exec, nil
}

var _ ports.LedgerStore = (*SQLiteStore)(nil)

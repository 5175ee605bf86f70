package storage

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// MaxTitleLength is the longest title the store accepts.
const MaxTitleLength = 200

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

var (
	ErrNotFound      = errors.New("task not found")
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title is too long")
)

type Task struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Status  bool      `json:"status"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	status INTEGER NOT NULL DEFAULT 0,
	created TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTodoColumns()
}

// ensureTodoColumns adds columns introduced after the first schema.
func (s *Store) ensureTodoColumns() error {
	required := map[string]string{
		"updated": "ALTER TABLE todos ADD COLUMN updated TEXT NOT NULL DEFAULT '';",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(todos);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// List returns all tasks, newest first.
func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, status, created, updated FROM todos ORDER BY created DESC, id DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) Get(ctx context.Context, id int64) (Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, status, created, updated FROM todos WHERE id = ?;`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) Create(ctx context.Context, title string, status bool) (Task, error) {
	if err := checkTitle(title); err != nil {
		return Task{}, err
	}
	now := s.now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `INSERT INTO todos (title, status, created, updated) VALUES (?, ?, ?, ?);`,
		title, boolToInt(status), now, now)
	if err != nil {
		return Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, err
	}
	return s.Get(ctx, id)
}

// Update stores title and status for t.ID and bumps its updated time.
func (s *Store) Update(ctx context.Context, t Task) (Task, error) {
	if err := checkTitle(t.Title); err != nil {
		return Task{}, err
	}
	now := s.now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET title = ?, status = ?, updated = ? WHERE id = ?;`,
		t.Title, boolToInt(t.Status), now, t.ID)
	if err != nil {
		return Task{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Task{}, ErrNotFound
	}
	return s.Get(ctx, t.ID)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (Task, error) {
	var t Task
	var statusInt int
	var createdStr, updatedStr string
	if err := sc.Scan(&t.ID, &t.Title, &statusInt, &createdStr, &updatedStr); err != nil {
		return Task{}, err
	}
	t.Status = statusInt == 1
	if created, err := time.Parse(time.RFC3339Nano, createdStr); err == nil {
		t.Created = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedStr); err == nil {
		t.Updated = updated
	} else {
		t.Updated = t.Created
	}
	return t, nil
}

func checkTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

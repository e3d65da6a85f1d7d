package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore 将宿主记录保存在单表中，每个宿主一行。
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore 打开（必要时创建）数据库文件。
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "cellbay.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS hosts (
		name TEXT PRIMARY KEY,
		priority INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create hosts table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path 返回数据库文件路径。
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load 实现 Store。
func (s *SQLiteStore) Load(ctx context.Context, host string) (Record, error) {
	if err := validHostName(host); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.db.QueryRowContext(ctx, `SELECT priority FROM hosts WHERE name = ?`, host).Scan(&rec.Priority)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("select host %s: %w", host, err)
	}
	return rec, nil
}

// Save 实现 Store。
func (s *SQLiteStore) Save(ctx context.Context, host string, rec Record) error {
	if err := validHostName(host); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO hosts (name, priority) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET priority = excluded.priority`, host, rec.Priority)
	if err != nil {
		return fmt.Errorf("upsert host %s: %w", host, err)
	}
	return nil
}

// Remove 实现 Store。
func (s *SQLiteStore) Remove(ctx context.Context, host string) error {
	if err := validHostName(host); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hosts WHERE name = ?`, host); err != nil {
		return fmt.Errorf("delete host %s: %w", host, err)
	}
	return nil
}

// Close 实现 Store。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

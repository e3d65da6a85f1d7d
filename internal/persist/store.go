package persist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Record 是宿主的持久化状态。
type Record struct {
	Priority int `json:"priority"`
}

// Store 负责宿主状态的读写。
type Store interface {
	// Load 返回宿主记录，不存在时返回 ErrNotFound。
	Load(ctx context.Context, host string) (Record, error)
	// Save 原子地写入宿主记录。
	Save(ctx context.Context, host string, rec Record) error
	// Remove 删除宿主记录，不存在时不报错。
	Remove(ctx context.Context, host string) error
	// Close 释放底层资源。
	Close() error
}

// ErrNotFound 表示宿主记录不存在。
var ErrNotFound = errors.New("host record not found")

const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
)

// Open 根据驱动名在 basePath 下创建存储。
func Open(driver, basePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFS:
		return NewFileStore(basePath)
	case DriverSQLite:
		if basePath == "" {
			return nil, errors.New("storage path required")
		}
		store, err := NewSQLiteStore(filepath.Join(basePath, "cellbay.db"))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
}

func validHostName(host string) error {
	if strings.TrimSpace(host) == "" {
		return errors.New("host name required")
	}
	if strings.ContainsAny(host, `/\`) || host == "." || host == ".." {
		return fmt.Errorf("invalid host name: %s", host)
	}
	return nil
}

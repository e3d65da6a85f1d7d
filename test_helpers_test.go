package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// configFixture 返回 internal/config/testdata 下的样例配置；go test 以包目录（仓库根）为工作目录。
func configFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("internal", "config", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("配置样例不存在: %v", err)
	}
	return path
}

// writeConfigFile 写入临时配置，StoragePath 固定指向同一临时目录下的 storage。
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	body := "StoragePath = \"" + filepath.ToSlash(filepath.Join(dir, "storage")) + "\"\n" + strings.TrimSpace(content) + "\n"
	file := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return file
}

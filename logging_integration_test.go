package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const singleHostConfig = `
[[Host]]
Name = "drive-a"

  [[Host.Slot]]
  Index = 0
  Type = "item-cell-1k"
`

func TestLoggingFallbackToStdout(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root 用户不受目录权限限制")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	logPath := filepath.ToSlash(filepath.Join(blocked, "sub", "cellbay.log"))
	configPath := writeConfigFile(t, fmt.Sprintf("LogLevel = \"info\"\nLogFilePath = %q\n", logPath)+singleHostConfig)

	useBufferWriters(t)
	code := run(cliOptions{configPath: configPath, checkOnly: true})
	if code != 0 {
		t.Fatalf("日志 fallback 不应导致失败，得到 %d", code)
	}
}

func TestCheckConfigWritesServiceLog(t *testing.T) {
	logPath := filepath.ToSlash(filepath.Join(t.TempDir(), "logs", "cellbay.log"))
	configPath := writeConfigFile(t, fmt.Sprintf("LogLevel = \"info\"\nLogFilePath = %q\n", logPath)+singleHostConfig)

	useBufferWriters(t)
	if code := run(cliOptions{configPath: configPath, checkOnly: true}); code != 0 {
		t.Fatalf("check-config 应成功，得到 %d (stderr=%s)", code, stdErrBuffer().String())
	}
	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("预期写入日志文件: %v", err)
	}
	for _, want := range []string{`"action":"check_config"`, `"service":"cellbay"`, `"drive-a:0"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("日志缺少 %s: %s", want, string(raw))
		}
	}
}

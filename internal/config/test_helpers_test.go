package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

// writeTempConfig 写入临时 TOML；未声明 StoragePath 时指向临时目录，避免测试在仓库内留下数据。
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if !strings.Contains(content, "StoragePath") {
		content = fmt.Sprintf("StoragePath = %q\n", filepath.Join(dir, "storage")) + content
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// hostBlock 渲染一个 [[Host]] 段落及其槽位。
func hostBlock(name string, slots ...SlotConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[[Host]]\nName = %q\n", name)
	for _, slot := range slots {
		fmt.Fprintf(&b, "\n  [[Host.Slot]]\n  Index = %d\n  Type = %q\n", slot.Index, slot.Type)
		if slot.Capacity != 0 {
			fmt.Fprintf(&b, "  Capacity = %d\n", slot.Capacity)
		}
	}
	return b.String()
}

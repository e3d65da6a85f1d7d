package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/config"
	"github.com/any-hub/cellbay/internal/storage"
)

func TestInitLoggerDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
	if logrus.StandardLogger().GetLevel() != logrus.InfoLevel {
		t.Fatalf("标准 logger 级别应同步")
	}
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}); err == nil {
		t.Fatalf("非法级别应返回错误")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
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

	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "cellbay.log"),
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestInitLoggerCreatesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellbay.log")
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "debug", LogFilePath: path})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestSlotFieldsIncludesMedium(t *testing.T) {
	m := storage.NewMedium("item-cell-1k", 0)
	fields := SlotFields("drive-a", 3, m)
	if fields["cell_type"] != "item-cell-1k" || fields["slot"] != 3 {
		t.Fatalf("字段错误: %v", fields)
	}
	if _, ok := SlotFields("drive-a", 3, nil)["serial"]; ok {
		t.Fatalf("空介质不应包含 serial")
	}
}

func TestInitLoggerStampsServiceFields(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)

	logger.WithFields(HostFields("drive-a", 3, 2)).Info("host attached")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("日志应为 JSON: %v (%s)", err, buf.String())
	}
	if entry["service"] != ServiceName || entry["host"] != "drive-a" || entry["version"] == "" {
		t.Fatalf("缺少服务字段: %v", entry)
	}

	buf.Reset()
	logger.WithField("service", "override").Info("explicit")
	entry = map[string]any{}
	_ = json.Unmarshal(buf.Bytes(), &entry)
	if entry["service"] != "override" {
		t.Fatalf("显式字段应优先: %v", entry)
	}
}

package main

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/config"
	"github.com/any-hub/cellbay/internal/metrics"
	"github.com/any-hub/cellbay/internal/persist"
	"github.com/any-hub/cellbay/internal/storage"
	"github.com/any-hub/cellbay/internal/tick"
)

func TestParseCLIFlagsPriority(t *testing.T) {
	t.Setenv("CELLBAY_CONFIG", "/tmp/env.toml")

	opts, err := parseCLIFlags([]string{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", opts.configPath)
	}

	opts, err = parseCLIFlags([]string{"--config", "/tmp/flag.toml"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", opts.configPath)
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{configPath: configFixture(t, "valid.toml"), checkOnly: true})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d", code)
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{configPath: configFixture(t, "missing.toml"), checkOnly: true})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
	if !strings.Contains(stdErrBuffer().String(), "加载配置失败") {
		t.Fatalf("stderr 应包含失败原因: %s", stdErrBuffer().String())
	}
}

func TestRunVersionOutput(t *testing.T) {
	useBufferWriters(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(stdOutBuffer().String(), "cellbay") {
		t.Fatalf("version 输出应包含 cellbay 标识")
	}
}

func TestParseCLIFlagsDefaultPath(t *testing.T) {
	t.Setenv("CELLBAY_CONFIG", "")
	opts, err := parseCLIFlags([]string{"--check-config"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "config.toml" || !opts.checkOnly {
		t.Fatalf("默认参数错误: %+v", opts)
	}
	if _, err := parseCLIFlags([]string{"--unknown"}); err == nil {
		t.Fatalf("未知参数应报错")
	}
}

func TestBuildGridAttachesConfiguredHosts(t *testing.T) {
	cfg, err := config.Load(configFixture(t, "valid.toml"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	store, err := persist.Open(persist.DriverFS, filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("打开存储失败: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	grid, err := buildGrid(cfg, logger, tick.NewManual(0), store, metrics.New())
	if err != nil {
		t.Fatalf("构建网格失败: %v", err)
	}

	a, err := grid.Host("drive-a")
	if err != nil {
		t.Fatalf("drive-a 应存在: %v", err)
	}
	if a.Priority() != 5 || a.Medium(0) == nil || a.Medium(3) == nil {
		t.Fatalf("drive-a 未按配置装载")
	}
	b, err := grid.Host("drive-b")
	if err != nil {
		t.Fatalf("drive-b 应存在: %v", err)
	}
	if grid.IsHostActive(b) {
		t.Fatalf("Detached 宿主不应持有频道")
	}
	if len(grid.HandlerList(storage.ChannelItems)) != 1 {
		t.Fatalf("只有 drive-a 的物品元件应出现在列表中")
	}
	if len(grid.HandlerList(storage.ChannelFluids)) != 1 {
		t.Fatalf("drive-a 的流体元件应出现在列表中")
	}
}

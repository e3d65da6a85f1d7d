package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/config"
	"github.com/any-hub/cellbay/internal/logging"
	"github.com/any-hub/cellbay/internal/metrics"
	"github.com/any-hub/cellbay/internal/network"
	"github.com/any-hub/cellbay/internal/persist"
	"github.com/any-hub/cellbay/internal/server"
	"github.com/any-hub/cellbay/internal/server/routes"
	"github.com/any-hub/cellbay/internal/tick"
	"github.com/any-hub/cellbay/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["hosts"] = config.HostNames(cfg.Hosts)
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	store, err := persist.Open(cfg.Global.StorageDriver, cfg.Global.StoragePath)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化持久化存储失败: %v\n", err)
		return 1
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 启动顺序为“配置 → 网格与宿主 → 恢复优先级 → 所有者循环 → 上电广播 → Fiber”，
	// 保证 HTTP 请求到达前所有宿主都已完成首次状态计算。
	ticker := tick.NewTicker(cfg.Global.TickInterval.DurationValue())
	rec := metrics.New()
	grid, err := buildGrid(cfg, logger, ticker, store, rec)
	if err != nil {
		fmt.Fprintf(stdErr, "构建网格失败: %v\n", err)
		return 1
	}
	if err := grid.Restore(ctx); err != nil {
		fmt.Fprintf(stdErr, "恢复宿主状态失败: %v\n", err)
		return 1
	}
	// 镜像需在上电广播之前订阅，才能收到每个宿主的首个状态字。
	mirrors := network.NewMirrorSet(ticker, uint64(cfg.Global.BlinkGraceTicks))
	mirrors.Attach(grid.Feed())

	go ticker.Run(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = grid.Run(ctx)
	}()
	if err := grid.Do(ctx, grid.Boot); err != nil {
		fmt.Fprintf(stdErr, "网格启动失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["hosts"] = config.HostNames(cfg.Hosts)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["storage_driver"] = cfg.Global.StorageDriver
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	err = startHTTPServer(ctx, cfg, grid, mirrors, rec, logger)
	stop()
	<-loopDone
	if err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildGrid 按配置创建网格与宿主，并把配置中的介质放入对应槽位。
func buildGrid(cfg *config.Config, logger *logrus.Logger, clock tick.Clock, store persist.Store, rec *metrics.Recorder) (*network.Grid, error) {
	grid := network.New(network.Options{
		Logger:  logger,
		Metrics: rec,
		Store:   store,
	})
	for _, hc := range cfg.Hosts {
		host, err := grid.AddHost(cfg.DriveOptions(hc, clock, logger), !hc.Detached)
		if err != nil {
			return nil, err
		}
		media := hc.Media()
		for slot, m := range media {
			host.SetMedium(slot, m)
			if !host.Accepts(m) {
				logger.WithFields(logging.SlotFields(hc.Name, slot, m)).Warn("medium has no registered handler")
			}
		}
		logger.WithFields(logging.HostFields(hc.Name, hc.Priority, len(media))).Debug("host attached")
	}
	return grid, nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("cellbay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 CELLBAY_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("CELLBAY_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(ctx context.Context, cfg *config.Config, grid *network.Grid, mirrors *network.MirrorSet, rec *metrics.Recorder, logger *logrus.Logger) error {
	app, err := server.NewApp(server.AppOptions{
		Logger:  logger,
		Grid:    grid,
		Metrics: rec,
		Mirrors: mirrors,
	})
	if err != nil {
		return err
	}
	routes.RegisterHostRoutes(app)
	routes.RegisterGridRoutes(app)
	app.Finalize()

	go func() {
		<-ctx.Done()
		if err := app.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithField("action", "shutdown").Warn(err.Error())
		}
	}()

	port := cfg.Global.ListenPort
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}

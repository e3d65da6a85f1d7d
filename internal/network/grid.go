package network

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/metrics"
	"github.com/any-hub/cellbay/internal/persist"
	"github.com/any-hub/cellbay/internal/storage"
)

var (
	// ErrUnavailable 表示网格暂时不可达，通知被丢弃。
	ErrUnavailable = errors.New("grid unavailable")
	// ErrHostNotFound 表示宿主名未注册。
	ErrHostNotFound = errors.New("host not found")
)

// Options 描述网格的可选协作者。
type Options struct {
	Logger  *logrus.Logger
	Metrics *metrics.Recorder
	Store   persist.Store
	Feed    *StatusFeed
}

// Grid 实现 drive.Grid 与 drive.PowerSink。
type Grid struct {
	logger  *logrus.Logger
	metrics *metrics.Recorder
	store   persist.Store
	feed    *StatusFeed

	powered    bool
	reachable  bool
	hosts      []*drive.Host
	byName     map[string]*drive.Host
	channels   map[*drive.Host]bool
	idle       map[*drive.Host]float64
	generation uint64

	inbox chan command
}

type command struct {
	fn   func()
	done chan struct{}
}

// New 创建已通电、可达的空网格。
func New(opts Options) *Grid {
	g := &Grid{
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		store:     opts.Store,
		feed:      opts.Feed,
		powered:   true,
		reachable: true,
		byName:    make(map[string]*drive.Host),
		channels:  make(map[*drive.Host]bool),
		idle:      make(map[*drive.Host]float64),
		inbox:     make(chan command),
	}
	if g.logger == nil {
		g.logger = logrus.StandardLogger()
	}
	if g.feed == nil {
		g.feed = NewStatusFeed()
	}
	return g
}

// Feed 返回状态流。
func (g *Grid) Feed() *StatusFeed {
	return g.feed
}

// AddHost 用网格作为 Grid/PowerSink 构造宿主并加入网格；channel 表示宿主是否已分配频道。
func (g *Grid) AddHost(opts drive.Options, channel bool) (*drive.Host, error) {
	opts.Name = strings.TrimSpace(opts.Name)
	if _, exists := g.byName[opts.Name]; exists {
		return nil, fmt.Errorf("host %s already attached", opts.Name)
	}
	opts.Grid = g
	opts.Power = g
	if opts.Logger == nil {
		opts.Logger = g.logger
	}
	h, err := drive.New(opts)
	if err != nil {
		return nil, err
	}
	g.hosts = append(g.hosts, h)
	g.byName[h.Name()] = h
	g.channels[h] = channel
	return h, nil
}

// DetachHost 将宿主移出网格并删除其持久化记录。
//
// 宿主的处理器随即从组合列表消失；状态流与指标中该宿主的条目一并清除。
func (g *Grid) DetachHost(ctx context.Context, name string) error {
	h, err := g.Host(name)
	if err != nil {
		return err
	}
	for i, other := range g.hosts {
		if other == h {
			g.hosts = append(g.hosts[:i], g.hosts[i+1:]...)
			break
		}
	}
	delete(g.byName, name)
	delete(g.channels, h)
	delete(g.idle, h)
	_ = g.PostHandlerListChanged(h)

	g.feed.Forget(name)
	g.metrics.ForgetHost(name)

	entry := g.logger.WithFields(logrus.Fields{
		"action": "detach_host",
		"host":   name,
	})
	if g.store != nil {
		if err := g.store.Remove(ctx, name); err != nil {
			entry.Warnf("remove record failed: %v", err)
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	entry.Info("host detached")
	return nil
}

// Host 按名称查找宿主。
func (g *Grid) Host(name string) (*drive.Host, error) {
	h, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, name)
	}
	return h, nil
}

// Hosts 按加入顺序返回所有宿主。
func (g *Grid) Hosts() []*drive.Host {
	out := make([]*drive.Host, len(g.hosts))
	copy(out, g.hosts)
	return out
}

// IsHostActive 实现 drive.Grid：网格通电且宿主持有频道。
func (g *Grid) IsHostActive(h *drive.Host) bool {
	return g.powered && g.channels[h]
}

// PostHandlerListChanged 实现 drive.Grid。
func (g *Grid) PostHandlerListChanged(h *drive.Host) error {
	if !g.reachable {
		g.metrics.NotificationDropped()
		return ErrUnavailable
	}
	g.generation++
	g.metrics.HandlerListChanged(h.Name())
	return nil
}

// PostContentsChanged 实现 drive.Grid：按方向累计换入换出的单位数。
func (g *Grid) PostContentsChanged(h *drive.Host, removed, added []storage.Stack) error {
	if !g.reachable {
		g.metrics.NotificationDropped()
		return ErrUnavailable
	}
	out, in := units(removed), units(added)
	g.metrics.ContentsChanged(h.Name(), "removed", out)
	g.metrics.ContentsChanged(h.Name(), "added", in)
	g.logger.WithFields(logrus.Fields{
		"action":  "contents_changed",
		"host":    h.Name(),
		"removed": out,
		"added":   in,
	}).Debug("grid contents changed")
	return nil
}

func units(stacks []storage.Stack) int64 {
	var n int64
	for _, s := range stacks {
		if s.Amount > 0 && n <= math.MaxInt64-s.Amount {
			n += s.Amount
		}
	}
	return n
}

// ReportIdlePower 实现 drive.PowerSink。
func (g *Grid) ReportIdlePower(h *drive.Host, total float64) {
	g.idle[h] = total
	g.metrics.IdlePower(h.Name(), total)
}

// IdlePower 返回宿主最近上报的待机功耗。
func (g *Grid) IdlePower(h *drive.Host) float64 {
	return g.idle[h]
}

// TotalIdlePower 返回所有宿主待机功耗之和。
func (g *Grid) TotalIdlePower() float64 {
	var total float64
	for _, h := range g.hosts {
		total += g.idle[h]
	}
	return total
}

// Generation 返回已接收的列表变更通知数。
func (g *Grid) Generation() uint64 {
	return g.generation
}

// Powered 报告网格是否通电。
func (g *Grid) Powered() bool {
	return g.powered
}

// HasChannel 报告宿主是否持有频道。
func (g *Grid) HasChannel(h *drive.Host) bool {
	return g.channels[h]
}

// SetPowered 切换网格供电，并向每个宿主投递 PowerStatusChanged。
func (g *Grid) SetPowered(on bool) {
	if g.powered == on {
		return
	}
	g.powered = on
	g.broadcast(drive.Event{Kind: drive.PowerStatusChanged})
}

// SetChannel 切换宿主的频道分配，并向每个宿主投递 ChannelStatusChanged。
func (g *Grid) SetChannel(name string, assigned bool) error {
	h, err := g.Host(name)
	if err != nil {
		return err
	}
	if g.channels[h] == assigned {
		return nil
	}
	g.channels[h] = assigned
	g.broadcast(drive.Event{Kind: drive.ChannelStatusChanged})
	return nil
}

// SetReachable 模拟网格暂时不可达；不可达期间的列表变更通知会被丢弃。
func (g *Grid) SetReachable(reachable bool) {
	g.reachable = reachable
}

// Boot 向所有宿主投递一次电力事件，使状态字与激活标志对齐初始状态。
func (g *Grid) Boot() {
	g.broadcast(drive.Event{Kind: drive.PowerStatusChanged})
}

func (g *Grid) broadcast(ev drive.Event) {
	g.logger.WithFields(logrus.Fields{
		"action":  "grid_event",
		"event":   ev.Kind.String(),
		"powered": g.powered,
		"hosts":   len(g.hosts),
	}).Debug("delivering grid event")

	for _, h := range g.hosts {
		h.Handle(ev)
	}
}

// HandlerList 组合所有激活宿主在指定通道上的处理器，按宿主优先级降序稳定排序；
// 优先级相同的保持宿主加入顺序与槽位顺序。
func (g *Grid) HandlerList(ch storage.Channel) []*drive.Watcher {
	var out []*drive.Watcher
	for _, h := range g.hosts {
		out = append(out, h.HandlerList(ch)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	g.metrics.HandlerListSize(ch.String(), len(out))
	return out
}

// Insert 按处理器列表顺序依次尝试放入，返回最终未被接收的部分。
func (g *Grid) Insert(ch storage.Channel, stack *storage.Stack, mode storage.Mode) *storage.Stack {
	left := stack.Copy()
	for _, w := range g.HandlerList(ch) {
		if left.Empty() {
			return nil
		}
		left = w.Insert(left, mode)
	}
	if left.Empty() {
		return nil
	}
	return left
}

// Extract 按处理器列表顺序依次提取，直到满足请求数量。
func (g *Grid) Extract(ch storage.Channel, request *storage.Stack, mode storage.Mode) *storage.Stack {
	if request.Empty() {
		return nil
	}
	var total int64
	for _, w := range g.HandlerList(ch) {
		remaining := request.Amount - total
		if remaining <= 0 {
			break
		}
		if got := w.Extract(request.WithAmount(remaining), mode); !got.Empty() {
			total += got.Amount
		}
	}
	return request.WithAmount(total)
}

// Restore 从持久化存储恢复每个宿主的优先级。
func (g *Grid) Restore(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	for _, h := range g.hosts {
		rec, err := g.store.Load(ctx, h.Name())
		if errors.Is(err, persist.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", h.Name(), err)
		}
		h.LoadPriority(rec.Priority)
	}
	return nil
}

// Flush 发布待同步的状态字并保存变更的优先级。所有者循环在每条命令后调用它。
func (g *Grid) Flush(ctx context.Context) {
	for _, h := range g.hosts {
		if w, ok := h.TakeResync(); ok {
			g.feed.Publish(h.Name(), w)
			g.metrics.StatusResync(h.Name())
		}
		if h.TakeDirty() && g.store != nil {
			if err := g.store.Save(ctx, h.Name(), persist.Record{Priority: h.Priority()}); err != nil {
				g.logger.WithFields(logrus.Fields{
					"action": "persist_priority",
					"host":   h.Name(),
				}).Warnf("save failed: %v", err)
			}
		}
	}
}

// Run 是网格的所有者循环，直到 ctx 结束才返回。
func (g *Grid) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-g.inbox:
			cmd.fn()
			g.Flush(ctx)
			close(cmd.done)
		}
	}
}

// Do 将 fn 投递到所有者循环执行并等待完成。
func (g *Grid) Do(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case g.inbox <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package drive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/statusword"
	"github.com/any-hub/cellbay/internal/storage"
	"github.com/any-hub/cellbay/internal/tick"
)

// SlotCount 是每个宿主的固定槽位数，受状态字位宽限制。
const SlotCount = statusword.Slots

const (
	// DefaultBaseIdlePower 是空宿主自身的待机功耗。
	DefaultBaseIdlePower = 2.0
	// DefaultBlinkGrace 是闪烁位保留的刻数。
	DefaultBlinkGrace uint64 = 8
)

// Options 描述构造宿主所需的协作者。
type Options struct {
	Name          string
	Resolver      cellhandler.Resolver
	Grid          Grid
	Power         PowerSink
	Clock         tick.Clock
	Logger        *logrus.Logger
	BaseIdlePower float64
	BlinkGrace    uint64
	Priority      int
}

type slot struct {
	medium  *storage.Medium
	handler cellhandler.Handler
	watcher *Watcher
	channel storage.Channel
	drain   float64
}

// Host 是多槽位存储宿主（驱动器）。
type Host struct {
	name     string
	resolver cellhandler.Resolver
	grid     Grid
	power    PowerSink
	clock    tick.Clock
	logger   *logrus.Logger

	baseIdle float64
	grace    uint64

	slots     [SlotCount]slot
	lists     ChannelList
	cached    bool
	idlePower float64

	priority        int
	state           statusword.Word
	lastStateChange uint64
	wasActive       bool

	resync bool
	dirty  bool
}

// New 校验协作者并返回尚未构建缓存的宿主。
func New(opts Options) (*Host, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, errors.New("host name is required")
	}
	if opts.Grid == nil {
		return nil, errors.New("grid is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("clock is required")
	}
	if opts.BaseIdlePower < 0 {
		return nil, fmt.Errorf("invalid base idle power: %v", opts.BaseIdlePower)
	}

	h := &Host{
		name:     name,
		resolver: opts.Resolver,
		grid:     opts.Grid,
		power:    opts.Power,
		clock:    opts.Clock,
		logger:   opts.Logger,
		baseIdle: opts.BaseIdlePower,
		grace:    opts.BlinkGrace,
		priority: opts.Priority,
	}
	if h.resolver == nil {
		h.resolver = cellhandler.Default()
	}
	if h.power == nil {
		h.power = nopPowerSink{}
	}
	if h.logger == nil {
		h.logger = logrus.StandardLogger()
	}
	if h.grace == 0 {
		h.grace = DefaultBlinkGrace
	}
	return h, nil
}

// Name 返回宿主名称。
func (h *Host) Name() string {
	return h.name
}

// Medium 返回槽位中的介质，空槽返回 nil。
func (h *Host) Medium(slot int) *storage.Medium {
	checkSlot(slot)
	return h.slots[slot].medium
}

// SetMedium 将介质放入槽位（nil 表示取出），随后按内容变更处理。
//
// 没有 Handler 愿意处理的介质同样会被放入，只是该槽位状态保持为空。
func (h *Host) SetMedium(slot int, m *storage.Medium) *storage.Medium {
	checkSlot(slot)
	prev := h.slots[slot].medium
	h.slots[slot].medium = m
	h.onContentChanged(slot, prev, m)
	return prev
}

// RemoveMedium 取出并返回槽位中的介质。
func (h *Host) RemoveMedium(slot int) *storage.Medium {
	return h.SetMedium(slot, nil)
}

// Accepts 报告注册表中是否有 Handler 接受该介质，供界面做槽位校验。
func (h *Host) Accepts(m *storage.Medium) bool {
	if m == nil {
		return false
	}
	_, ok := h.resolver.Resolve(m)
	return ok
}

// Priority 返回宿主优先级。
func (h *Host) Priority() int {
	return h.priority
}

// SetPriority 更新优先级，整表重建并通知网络列表组成变化。
func (h *Host) SetPriority(v int) {
	h.priority = v
	h.dirty = true

	h.cached = false
	h.Rebuild()
	h.notifyListChanged("set_priority")
}

// LoadPriority 从持久化状态恢复优先级，缓存在下次使用时重建。
func (h *Host) LoadPriority(v int) {
	h.priority = v
	h.cached = false
}

// TakeDirty 报告并清除"优先级待持久化"标记。
func (h *Host) TakeDirty() bool {
	dirty := h.dirty
	h.dirty = false
	return dirty
}

// IdlePower 返回最近一次上报的待机功耗。
func (h *Host) IdlePower() float64 {
	return h.idlePower
}

// SaveChanges 实现 cellhandler.Owner：介质内容被提交修改后标记状态重新同步。
func (h *Host) SaveChanges(inv storage.Inventory) {
	h.logger.WithFields(logrus.Fields{
		"action":  "cell_saved",
		"host":    h.name,
		"channel": inv.Channel().String(),
	}).Debug("cell contents committed")
	h.markForUpdate()
}

func (h *Host) onContentChanged(slot int, removed, added *storage.Medium) {
	if h.cached {
		h.cached = false
		h.Rebuild()
	}

	fields := logrus.Fields{
		"action": "slot_changed",
		"host":   h.name,
		"slot":   slot,
	}
	if removed != nil {
		fields["removed"] = removed.Type
	}
	if added != nil {
		fields["added"] = added.Type
	}
	h.logger.WithFields(fields).Debug("slot contents changed")

	h.notifyListChanged("slot_changed")
	h.postContents(removed, added)
	h.markForUpdate()
}

// postContents 只在宿主活跃时投递，空槽一侧为 nil。
func (h *Host) postContents(removed, added *storage.Medium) {
	if !h.grid.IsHostActive(h) {
		return
	}
	var out, in []storage.Stack
	if removed != nil {
		out = removed.Snapshot()
	}
	if added != nil {
		in = added.Snapshot()
	}
	if len(out) == 0 && len(in) == 0 {
		return
	}
	if err := h.grid.PostContentsChanged(h, out, in); err != nil {
		h.logger.WithFields(logrus.Fields{
			"action": "contents_notify",
			"host":   h.name,
		}).Debugf("notification dropped: %v", err)
	}
}

func (h *Host) notifyListChanged(reason string) {
	if err := h.grid.PostHandlerListChanged(h); err != nil {
		h.logger.WithFields(logrus.Fields{
			"action": "handler_list_notify",
			"host":   h.name,
			"reason": reason,
		}).Debugf("notification dropped: %v", err)
	}
}

func (h *Host) markForUpdate() {
	h.resync = true
}

func checkSlot(slot int) {
	if slot < 0 || slot >= SlotCount {
		panic(fmt.Sprintf("drive: slot index %d out of range [0,%d)", slot, SlotCount))
	}
}

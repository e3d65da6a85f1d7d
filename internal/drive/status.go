package drive

import (
	"github.com/any-hub/cellbay/internal/statusword"
	"github.com/any-hub/cellbay/internal/storage"
)

// Handle 是事件反应器入口：电力与频道事件都会重新计算激活状态与状态字。
func (h *Host) Handle(ev Event) {
	switch ev.Kind {
	case PowerStatusChanged, ChannelStatusChanged:
		h.recalculateDisplay()
	}
}

// recalculateDisplay 在激活状态跳变时通知网络，并在远端关心的位变化时标记重新同步。
func (h *Host) recalculateDisplay() {
	old := h.state
	active := h.grid.IsHostActive(h)

	if active != h.wasActive {
		h.wasActive = active
		h.notifyListChanged("active_changed")
	}

	h.state = h.computeWord(active)
	if statusword.Changed(old, h.state) {
		h.markForUpdate()
	}
}

// computeWord 超过宽限窗口时清空旧状态字，否则只保留闪烁位，再写入供电位与各槽位状态。
func (h *Host) computeWord(active bool) statusword.Word {
	var w statusword.Word
	if h.withinGrace() {
		w = h.state & statusword.BlinkMask
	}
	w = w.WithPower(active)
	for k := 0; k < SlotCount; k++ {
		w = w.WithStatus(k, h.CellStatus(k))
	}
	return w
}

func (h *Host) withinGrace() bool {
	return h.clock.Now()-h.lastStateChange <= h.grace
}

// StatusWord 重新计算并返回要发送给远端的状态字。
func (h *Host) StatusWord() statusword.Word {
	h.state = h.computeWord(h.grid.IsHostActive(h))
	return h.state
}

// TakeResync 若宿主被标记为需要重新同步，返回最新状态字并清除标记。
func (h *Host) TakeResync() (statusword.Word, bool) {
	if !h.resync {
		return 0, false
	}
	h.resync = false
	return h.StatusWord(), true
}

// CellStatus 返回槽位的 2 bit 状态，直接询问该槽位的 Handler。
func (h *Host) CellStatus(slot int) storage.CellStatus {
	checkSlot(slot)
	h.Rebuild()
	s := &h.slots[slot]
	if s.watcher == nil || s.handler == nil {
		return storage.StatusEmpty
	}
	return s.handler.Status(s.medium, s.watcher.inv)
}

// IsBlinking 报告槽位是否处于闪烁窗口内。
func (h *Host) IsBlinking(slot int) bool {
	checkSlot(slot)
	if !h.withinGrace() {
		return false
	}
	return h.state.Blinking(slot)
}

// Blink 让槽位闪烁一次并强制广播状态。
func (h *Host) Blink(slot int) {
	checkSlot(slot)
	now := h.clock.Now()
	if now-h.lastStateChange > h.grace {
		h.state = 0
	}
	h.lastStateChange = now
	h.state = h.state.WithBlink(slot)

	h.recalculateDisplay()
	h.markForUpdate()
}

// IsPowered 报告宿主当前是否激活。
func (h *Host) IsPowered() bool {
	return h.grid.IsHostActive(h)
}

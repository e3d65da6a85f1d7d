package drive

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/storage"
)

// Invalidate 标记槽位缓存失效，下一次 Rebuild 会整表重建。
func (h *Host) Invalidate() {
	h.cached = false
}

// Valid 报告缓存当前是否有效。
func (h *Host) Valid() bool {
	return h.cached
}

// Rebuild 在缓存失效时丢弃所有槽位的派生状态并重新解析，从不做增量比较。
//
// 每个介质按 storage.Channels() 的顺序询问通道，取第一个非空视图；
// 待机功耗为基础值加上所有成功解析槽位的贡献，并上报给 PowerSink。
func (h *Host) Rebuild() {
	if h.cached {
		return
	}

	var lists ChannelList
	power := h.baseIdle

	for i := range h.slots {
		s := &h.slots[i]
		s.handler = nil
		s.watcher = nil
		s.drain = 0
		s.channel = 0

		if s.medium == nil {
			continue
		}
		handler, ok := h.resolver.Resolve(s.medium)
		if !ok {
			continue
		}
		s.handler = handler

		for _, ch := range storage.Channels() {
			inv := handler.Inventory(s.medium, h, ch)
			if inv == nil {
				continue
			}
			s.channel = ch
			s.drain = handler.IdleDrain(s.medium, inv)
			s.watcher = newWatcher(h, i, s.medium, handler, inv)
			lists[ch] = append(lists[ch], s.watcher)
			power += s.drain
			break
		}
	}

	h.lists = lists
	h.idlePower = power
	h.power.ReportIdlePower(h, power)
	h.cached = true

	h.logger.WithFields(logrus.Fields{
		"action": "cache_rebuild",
		"host":   h.name,
		"items":  len(lists[storage.ChannelItems]),
		"fluids": len(lists[storage.ChannelFluids]),
		"power":  power,
	}).Debug("slot cache rebuilt")
}

// HandlerList 返回该宿主在指定通道上的处理器，按槽位顺序排列。
//
// 宿主未激活时总是返回空列表，不论缓存状态如何。
func (h *Host) HandlerList(ch storage.Channel) []*Watcher {
	if !h.grid.IsHostActive(h) {
		return nil
	}
	h.Rebuild()
	return slices.Clone(h.lists[ch])
}

// Handler 返回槽位当前的处理器，未解析或已失效时为 nil。
func (h *Host) Handler(slot int) *Watcher {
	checkSlot(slot)
	h.Rebuild()
	return h.slots[slot].watcher
}

// refreshDrain 只重新计算一个槽位的功耗贡献，用于功耗随占用变化的元件。
func (h *Host) refreshDrain(w *Watcher) {
	s := &h.slots[w.slot]
	if !h.cached || s.watcher != w {
		return
	}
	drain := s.handler.IdleDrain(s.medium, w.inv)
	if drain == s.drain {
		return
	}
	h.idlePower += drain - s.drain
	s.drain = drain
	h.power.ReportIdlePower(h, h.idlePower)
}

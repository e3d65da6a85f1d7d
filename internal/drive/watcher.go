package drive

import (
	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/storage"
)

// Watcher 是带优先级标签的库存处理器，由一个槽位持有，被处理器列表引用。
//
// 提交成功的修改会让所在槽位闪烁；若元件功耗随占用变化，还会刷新该槽位的功耗贡献。
type Watcher struct {
	host     *Host
	slot     int
	medium   *storage.Medium
	handler  cellhandler.Handler
	inv      storage.Inventory
	priority int
}

func newWatcher(h *Host, slot int, m *storage.Medium, handler cellhandler.Handler, inv storage.Inventory) *Watcher {
	return &Watcher{
		host:     h,
		slot:     slot,
		medium:   m,
		handler:  handler,
		inv:      inv,
		priority: h.priority,
	}
}

// Host 返回所属宿主。
func (w *Watcher) Host() *Host { return w.host }

// Slot 返回所在槽位。
func (w *Watcher) Slot() int { return w.slot }

// Medium 返回包装的介质。
func (w *Watcher) Medium() *storage.Medium { return w.medium }

// Priority 返回构建时宿主的优先级。
func (w *Watcher) Priority() int { return w.priority }

// Channel 实现 storage.Inventory。
func (w *Watcher) Channel() storage.Channel { return w.inv.Channel() }

// Available 实现 storage.Inventory。
func (w *Watcher) Available() []storage.Stack { return w.inv.Available() }

// Insert 实现 storage.Inventory。
func (w *Watcher) Insert(stack *storage.Stack, mode storage.Mode) *storage.Stack {
	if stack.Empty() {
		return nil
	}
	left := w.inv.Insert(stack, mode)
	if mode == storage.Modulate && amountOf(left) < stack.Amount {
		w.committed()
	}
	return left
}

// Extract 实现 storage.Inventory。
func (w *Watcher) Extract(request *storage.Stack, mode storage.Mode) *storage.Stack {
	if request.Empty() {
		return nil
	}
	got := w.inv.Extract(request, mode)
	if mode == storage.Modulate && !got.Empty() {
		w.committed()
	}
	return got
}

func (w *Watcher) committed() {
	w.host.Blink(w.slot)
	if cellhandler.DependsOnContents(w.handler) {
		w.host.refreshDrain(w)
	}
}

func amountOf(s *storage.Stack) int64 {
	if s.Empty() {
		return 0
	}
	return s.Amount
}

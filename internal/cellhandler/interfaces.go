package cellhandler

import "github.com/any-hub/cellbay/internal/storage"

// Owner 是持有库存视图的宿主，提交的修改会通过 SaveChanges 通知它。
type Owner interface {
	SaveChanges(inv storage.Inventory)
}

// Handler 负责为某类介质产出库存视图及其功耗/状态。
type Handler interface {
	// CanHandle 报告该 Handler 是否愿意处理此介质。
	CanHandle(m *storage.Medium) bool
	// Inventory 返回介质在指定通道上的视图；不支持该通道时返回 nil。
	Inventory(m *storage.Medium, owner Owner, channel storage.Channel) storage.Inventory
	// IdleDrain 返回该介质的待机功耗。
	IdleDrain(m *storage.Medium, inv storage.Inventory) float64
	// Status 返回槽位的 2 bit 状态。
	Status(m *storage.Medium, inv storage.Inventory) storage.CellStatus
}

// OccupancyDrain 由功耗随内容变化的 Handler 实现。
type OccupancyDrain interface {
	DrainDependsOnContents() bool
}

// Resolver 是驱动器消费注册表的最小接口。
type Resolver interface {
	Resolve(m *storage.Medium) (Handler, bool)
}

// DependsOnContents 报告 h 的功耗是否随内容变化。
func DependsOnContents(h Handler) bool {
	if od, ok := h.(OccupancyDrain); ok {
		return od.DrainDependsOnContents()
	}
	return false
}

// CapacityLimit 由对介质容量有上限的 Handler 实现，超过上限的介质无法被安全计量。
type CapacityLimit interface {
	MaxCapacity() int64
}

// CapacityFits 报告 capacity 是否在 h 可接受的范围内；未声明上限的 Handler 总是接受。
func CapacityFits(h Handler, capacity int64) bool {
	if capacity < 0 {
		return false
	}
	if cl, ok := h.(CapacityLimit); ok {
		return capacity <= cl.MaxCapacity()
	}
	return true
}

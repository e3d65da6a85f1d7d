// Package pipebridge 注册单向管道桥接元件：物品只能被送入外部管道，不能取回。
//
// 介质 Capacity 表示出站缓冲的单位数；缓冲中的内容会计入待机功耗。
package pipebridge

import (
	"math"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/storage"
)

// Key 是管道桥接介质的类型键。
const Key = "pipe-bridge"

const (
	baseDrain    = 0.5
	drainPerUnit = 0.01
)

func init() {
	cellhandler.MustRegister(Key, Handler{})
}

// Handler 为管道桥接介质提供 Items 通道视图。
type Handler struct{}

// MaxCapacity 实现 cellhandler.CapacityLimit：缓冲以单位计，不做换算。
func (Handler) MaxCapacity() int64 {
	return math.MaxInt64
}

// CanHandle 要求介质声明了出站缓冲容量。
func (Handler) CanHandle(m *storage.Medium) bool {
	return m != nil && m.Capacity > 0
}

// Inventory 只提供 Items 通道。
func (Handler) Inventory(m *storage.Medium, owner cellhandler.Owner, channel storage.Channel) storage.Inventory {
	if channel != storage.ChannelItems {
		return nil
	}
	return &Inventory{medium: m, owner: owner}
}

// IdleDrain 随排队内容增长。
func (Handler) IdleDrain(m *storage.Medium, inv storage.Inventory) float64 {
	return baseDrain + drainPerUnit*float64(m.Total())
}

// DrainDependsOnContents 实现 cellhandler.OccupancyDrain。
func (Handler) DrainDependsOnContents() bool {
	return true
}

// Status 在缓冲满时报告 Full。
func (Handler) Status(m *storage.Medium, inv storage.Inventory) storage.CellStatus {
	if inv == nil {
		return storage.StatusEmpty
	}
	if m.Total() >= m.Capacity {
		return storage.StatusFull
	}
	return storage.StatusAvailable
}

// Inventory 是只写的桥接视图。
type Inventory struct {
	medium *storage.Medium
	owner  cellhandler.Owner
}

// Channel 实现 storage.Inventory。
func (p *Inventory) Channel() storage.Channel {
	return storage.ChannelItems
}

// Insert 整堆接收或整堆拒绝。
func (p *Inventory) Insert(stack *storage.Stack, mode storage.Mode) *storage.Stack {
	if stack.Empty() {
		return nil
	}
	if stack.Amount > p.room() {
		return stack.Copy()
	}
	if mode == storage.Modulate {
		p.medium.Add(stack.Kind, stack.Amount)
		if p.owner != nil {
			p.owner.SaveChanges(p)
		}
	}
	return nil
}

// room 返回缓冲剩余单位数，按差值比较以免大数量相加溢出。
func (p *Inventory) room() int64 {
	free := p.medium.Capacity - p.medium.Total()
	if free < 0 {
		return 0
	}
	return free
}

// Extract 永远返回 nil：管道另一端不可回读。
func (p *Inventory) Extract(request *storage.Stack, mode storage.Mode) *storage.Stack {
	return nil
}

// Available 永远为空。
func (p *Inventory) Available() []storage.Stack {
	return nil
}

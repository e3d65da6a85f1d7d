// Package bytecell implements byte-budgeted cell inventories shared by the
// item and fluid cell handlers. A cell has a fixed byte budget; every stored
// kind costs TypeCost bytes of bookkeeping and every UnitsPerByte units of
// content cost one more byte.
package bytecell

import (
	"math"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/storage"
)

// Spec 描述一种元件规格。
type Spec struct {
	Bytes        int64
	TypeCost     int64
	UnitsPerByte int64
	MaxKinds     int
	IdleDrain    float64
}

// Handler 是单一通道的字节元件 Handler，一个实例对应一种元件规格。
type Handler struct {
	Channel storage.Channel
	Spec    Spec
}

// CanHandle 接受所有介质，类型过滤由注册表键完成。
func (h Handler) CanHandle(m *storage.Medium) bool {
	return m != nil
}

// Inventory 只在元件自身的通道上返回视图。
func (h Handler) Inventory(m *storage.Medium, owner cellhandler.Owner, channel storage.Channel) storage.Inventory {
	if m == nil || channel != h.Channel {
		return nil
	}
	return &Inventory{medium: m, channel: h.Channel, spec: h.specFor(m), owner: owner}
}

// IdleDrain 与占用无关，只取决于元件规格。
func (h Handler) IdleDrain(m *storage.Medium, inv storage.Inventory) float64 {
	return h.Spec.IdleDrain
}

// Status 根据剩余字节与种类上限计算槽位状态。
func (h Handler) Status(m *storage.Medium, inv storage.Inventory) storage.CellStatus {
	cell, ok := inv.(*Inventory)
	if !ok || cell == nil {
		return storage.StatusEmpty
	}
	return cell.Status()
}

// MaxCapacity 实现 cellhandler.CapacityLimit：字节数乘以 UnitsPerByte 不得溢出 int64。
func (h Handler) MaxCapacity() int64 {
	return MaxBytes(h.Spec.UnitsPerByte)
}

// MaxBytes 返回给定换算率下可安全表示的最大字节预算。
func MaxBytes(unitsPerByte int64) int64 {
	if unitsPerByte <= 1 {
		return math.MaxInt64
	}
	return math.MaxInt64 / unitsPerByte
}

func (h Handler) specFor(m *storage.Medium) Spec {
	spec := h.Spec
	if m.Capacity > 0 {
		spec.Bytes = m.Capacity
	}
	return spec
}

// Inventory 是介质上的字节元件视图，内容直接读写 Medium。
type Inventory struct {
	medium  *storage.Medium
	channel storage.Channel
	spec    Spec
	owner   cellhandler.Owner
}

// Channel 实现 storage.Inventory。
func (c *Inventory) Channel() storage.Channel {
	return c.channel
}

// Medium 返回底层介质。
func (c *Inventory) Medium() *storage.Medium {
	return c.medium
}

// Insert 实现 storage.Inventory。
func (c *Inventory) Insert(stack *storage.Stack, mode storage.Mode) *storage.Stack {
	if stack.Empty() {
		return nil
	}

	kinds := len(c.medium.Kinds())
	if c.medium.Amount(stack.Kind) == 0 {
		if kinds >= c.spec.MaxKinds {
			return stack.Copy()
		}
		kinds++
	}

	room := c.roomFor(kinds)
	if room <= 0 {
		return stack.Copy()
	}

	accepted := stack.Amount
	if accepted > room {
		accepted = room
	}
	if mode == storage.Modulate {
		c.medium.Add(stack.Kind, accepted)
		c.save()
	}
	return stack.WithAmount(stack.Amount - accepted)
}

// Extract 实现 storage.Inventory。
func (c *Inventory) Extract(request *storage.Stack, mode storage.Mode) *storage.Stack {
	if request.Empty() {
		return nil
	}
	taken := c.medium.Amount(request.Kind)
	if taken > request.Amount {
		taken = request.Amount
	}
	if taken <= 0 {
		return nil
	}
	if mode == storage.Modulate {
		c.medium.Add(request.Kind, -taken)
		c.save()
	}
	return request.WithAmount(taken)
}

// Available 实现 storage.Inventory。
func (c *Inventory) Available() []storage.Stack {
	return c.medium.Snapshot()
}

// UsedBytes 返回已占用字节数。
func (c *Inventory) UsedBytes() int64 {
	kinds := int64(len(c.medium.Kinds()))
	total := c.medium.Total()
	upb := c.unitsPerByte()
	used := total / upb
	if total%upb != 0 {
		used++
	}
	return kinds*c.spec.TypeCost + used
}

// Status 返回元件状态：满、种类满或可用。
func (c *Inventory) Status() storage.CellStatus {
	kinds := len(c.medium.Kinds())
	if c.roomFor(kinds) <= 0 {
		return storage.StatusFull
	}
	if kinds >= c.spec.MaxKinds || c.roomFor(kinds+1) <= 0 {
		return storage.StatusTypesFull
	}
	return storage.StatusAvailable
}

// roomFor 返回在持有 kinds 种内容时还能放入的单位数。
func (c *Inventory) roomFor(kinds int) int64 {
	budget := c.spec.Bytes - int64(kinds)*c.spec.TypeCost
	if budget <= 0 {
		return 0
	}
	upb := c.unitsPerByte()
	units := int64(math.MaxInt64)
	if budget <= MaxBytes(upb) {
		units = budget * upb
	}
	room := units - c.medium.Total()
	if room < 0 {
		return 0
	}
	return room
}

func (c *Inventory) unitsPerByte() int64 {
	if c.spec.UnitsPerByte <= 0 {
		return 1
	}
	return c.spec.UnitsPerByte
}

func (c *Inventory) save() {
	if c.owner != nil {
		c.owner.SaveChanges(c)
	}
}

package storage

import "fmt"

// Channel 描述存储介质的通道类型，闭集合：物品或流体。
type Channel int

const (
	ChannelItems Channel = iota
	ChannelFluids
)

// ChannelCount 是 Channel 闭集合的大小，便于按通道分配定长数组。
const ChannelCount = 2

var channelOrder = [ChannelCount]Channel{ChannelItems, ChannelFluids}

// Channels 返回解析介质时的固定偏好顺序：先 Items 后 Fluids。
func Channels() []Channel {
	out := make([]Channel, len(channelOrder))
	copy(out, channelOrder[:])
	return out
}

func (c Channel) String() string {
	switch c {
	case ChannelItems:
		return "items"
	case ChannelFluids:
		return "fluids"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ParseChannel 将诊断接口中的字符串转换为 Channel。
func ParseChannel(raw string) (Channel, bool) {
	switch raw {
	case "items", "item":
		return ChannelItems, true
	case "fluids", "fluid":
		return ChannelFluids, true
	default:
		return 0, false
	}
}

// Mode 决定 Insert/Extract 是试运行还是提交。
type Mode int

const (
	Simulate Mode = iota
	Modulate
)

func (m Mode) String() string {
	if m == Modulate {
		return "modulate"
	}
	return "simulate"
}

// CellStatus 是单个槽位的 2 bit 状态。
type CellStatus uint8

const (
	StatusEmpty CellStatus = iota
	StatusAvailable
	StatusTypesFull
	StatusFull
)

func (s CellStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusAvailable:
		return "available"
	case StatusTypesFull:
		return "types_full"
	case StatusFull:
		return "full"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Stack 是某种物品/流体的一份数量。nil 表示"无"。
type Stack struct {
	Kind   string
	Amount int64
}

// NewStack 构造 Stack；数量非正时返回 nil。
func NewStack(kind string, amount int64) *Stack {
	if kind == "" || amount <= 0 {
		return nil
	}
	return &Stack{Kind: kind, Amount: amount}
}

// Empty 报告 Stack 是否为空（nil 或数量为 0）。
func (s *Stack) Empty() bool {
	return s == nil || s.Amount <= 0 || s.Kind == ""
}

// Copy 返回独立副本。
func (s *Stack) Copy() *Stack {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// WithAmount 返回同类型、指定数量的新 Stack；数量非正时返回 nil。
func (s *Stack) WithAmount(amount int64) *Stack {
	if s == nil {
		return nil
	}
	return NewStack(s.Kind, amount)
}

func (s *Stack) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%dx%s", s.Amount, s.Kind)
}

// Inventory 是介质在某个通道上的库存视图。
//
// Insert 返回未能接收的部分（全部接收时为 nil）；Extract 返回实际取出的部分
// （什么都没取出时为 nil）。Simulate 模式下不得修改任何内部状态。
type Inventory interface {
	Channel() Channel
	Insert(stack *Stack, mode Mode) *Stack
	Extract(request *Stack, mode Mode) *Stack
	Available() []Stack
}

package storage

import (
	"sort"

	"github.com/google/uuid"
)

// Medium 是可以插入槽位的存储介质（存储元件）。
//
// 内容保存在介质本身，库存视图只是对它的包装，因此缓存重建不会丢失内容。
type Medium struct {
	Type     string
	Serial   string
	Capacity int64
	Contents map[string]int64
}

// NewMedium 创建带随机序列号的空介质。
func NewMedium(kind string, capacity int64) *Medium {
	return &Medium{
		Type:     kind,
		Serial:   uuid.NewString(),
		Capacity: capacity,
		Contents: make(map[string]int64),
	}
}

// Amount 返回某种内容的存量。
func (m *Medium) Amount(kind string) int64 {
	if m == nil || m.Contents == nil {
		return 0
	}
	return m.Contents[kind]
}

// Kinds 返回按名称排序的内容种类。
func (m *Medium) Kinds() []string {
	if m == nil || len(m.Contents) == 0 {
		return nil
	}
	kinds := make([]string, 0, len(m.Contents))
	for kind, amount := range m.Contents {
		if amount > 0 {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// Total 返回所有内容的数量之和。
func (m *Medium) Total() int64 {
	if m == nil {
		return 0
	}
	var total int64
	for _, amount := range m.Contents {
		total += amount
	}
	return total
}

// Add 调整某种内容的存量，结果为 0 时删除该键。
func (m *Medium) Add(kind string, delta int64) {
	if m.Contents == nil {
		m.Contents = make(map[string]int64)
	}
	next := m.Contents[kind] + delta
	if next <= 0 {
		delete(m.Contents, kind)
		return
	}
	m.Contents[kind] = next
}

// Snapshot 以 Stack 形式返回内容，按种类排序。
func (m *Medium) Snapshot() []Stack {
	kinds := m.Kinds()
	if len(kinds) == 0 {
		return nil
	}
	out := make([]Stack, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, Stack{Kind: kind, Amount: m.Contents[kind]})
	}
	return out
}

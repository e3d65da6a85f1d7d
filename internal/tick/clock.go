// Package tick 提供以"刻"为单位的单调时钟，宿主的闪烁宽限窗口只以刻计量。
package tick

import (
	"context"
	"sync/atomic"
	"time"
)

// Clock 返回单调递增的刻数。
type Clock interface {
	Now() uint64
}

// Manual 是由调用方推进的时钟，测试与回放使用。
type Manual struct {
	now atomic.Uint64
}

// NewManual 以 start 作为初始刻数。
func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// Now 实现 Clock。
func (m *Manual) Now() uint64 {
	return m.now.Load()
}

// Advance 前进 n 刻并返回新的刻数。
func (m *Manual) Advance(n uint64) uint64 {
	return m.now.Add(n)
}

// DefaultInterval 是每刻的默认墙钟时长（每秒 20 刻）。
const DefaultInterval = 50 * time.Millisecond

// Ticker 按固定间隔推进刻数。
type Ticker struct {
	interval time.Duration
	now      atomic.Uint64
}

// NewTicker 创建墙钟驱动的时钟；interval 非正时使用 DefaultInterval。
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval}
}

// Now 实现 Clock。
func (t *Ticker) Now() uint64 {
	return t.now.Load()
}

// Run 阻塞直到 ctx 结束。
func (t *Ticker) Run(ctx context.Context) {
	timer := time.NewTicker(t.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			t.now.Add(1)
		}
	}
}

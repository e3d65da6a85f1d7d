// Package statusword packs a drive's per-slot state into the 32-bit word sent
// to remote observers.
//
// Bits [3k, 3k+1] hold slot k's CellStatus, bit 3k+2 is the slot's blink
// flag, bit 31 is the power flag. Bit 30 is unused.
package statusword

import "github.com/any-hub/cellbay/internal/storage"

// Slots 是一个状态字能容纳的槽位数。
const Slots = 10

const (
	bitsPerSlot = 3
	statusBits  = 0x3
	blinkBit    = 0x4
)

const (
	// PowerBit 是供电/激活标志。
	PowerBit Word = 1 << 31
	// BlinkMask 覆盖所有槽位的闪烁位。
	BlinkMask Word = 0x24924924
	// ChangeMask 是判断是否需要重新同步时参与比较的位，不含闪烁位。
	ChangeMask Word = ^BlinkMask
)

// Word 是线上传输的状态字。
type Word uint32

// State 是解码后的状态字。
type State struct {
	Statuses [Slots]storage.CellStatus
	Blinks   [Slots]bool
	Powered  bool
}

// Encode 按位布局打包 State。
func Encode(s State) Word {
	var w Word
	if s.Powered {
		w |= PowerBit
	}
	for k := 0; k < Slots; k++ {
		w = w.WithStatus(k, s.Statuses[k])
		if s.Blinks[k] {
			w = w.WithBlink(k)
		}
	}
	return w
}

// Decode 对任意 32 位值都能给出确定的结果。
func Decode(w Word) State {
	var s State
	s.Powered = w.Powered()
	for k := 0; k < Slots; k++ {
		s.Statuses[k] = w.Status(k)
		s.Blinks[k] = w.Blinking(k)
	}
	return s
}

// Changed 报告两个状态字在远端关心的位上是否不同。
func Changed(old, next Word) bool {
	return old&ChangeMask != next&ChangeMask
}

// Status 读取槽位 k 的状态。
func (w Word) Status(k int) storage.CellStatus {
	checkSlot(k)
	return storage.CellStatus((uint32(w) >> (bitsPerSlot * k)) & statusBits)
}

// Blinking 读取槽位 k 的闪烁位。
func (w Word) Blinking(k int) bool {
	checkSlot(k)
	return (uint32(w)>>(bitsPerSlot*k))&blinkBit != 0
}

// Powered 读取供电位。
func (w Word) Powered() bool {
	return w&PowerBit != 0
}

// WithStatus 将槽位 k 的状态位替换为 status。
func (w Word) WithStatus(k int, status storage.CellStatus) Word {
	checkSlot(k)
	shift := bitsPerSlot * k
	w &^= Word(statusBits) << shift
	return w | Word(uint32(status)&statusBits)<<shift
}

// WithBlink 置位槽位 k 的闪烁位。
func (w Word) WithBlink(k int) Word {
	checkSlot(k)
	return w | Word(blinkBit)<<(bitsPerSlot*k)
}

// WithPower 设置或清除供电位。
func (w Word) WithPower(on bool) Word {
	if on {
		return w | PowerBit
	}
	return w &^ PowerBit
}

func checkSlot(k int) {
	if k < 0 || k >= Slots {
		panic("statusword: slot index out of range")
	}
}

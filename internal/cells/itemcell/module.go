// Package itemcell 注册物品存储元件（1k/4k/16k/64k），只提供 Items 通道。
package itemcell

import (
	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/cells/bytecell"
	"github.com/any-hub/cellbay/internal/storage"
)

const (
	typeCost     = 8
	unitsPerByte = 8
	maxKinds     = 63
)

// Sizes 列出已注册的物品元件规格，键为介质类型。
var Sizes = map[string]bytecell.Spec{
	"item-cell-1k":  {Bytes: 1024, IdleDrain: 0.5},
	"item-cell-4k":  {Bytes: 4 * 1024, IdleDrain: 1.0},
	"item-cell-16k": {Bytes: 16 * 1024, IdleDrain: 1.5},
	"item-cell-64k": {Bytes: 64 * 1024, IdleDrain: 2.0},
}

func init() {
	for key, spec := range Sizes {
		spec.TypeCost = typeCost
		spec.UnitsPerByte = unitsPerByte
		spec.MaxKinds = maxKinds
		cellhandler.MustRegister(key, bytecell.Handler{Channel: storage.ChannelItems, Spec: spec})
	}
}

// Package fluidcell 注册流体存储元件，只提供 Fluids 通道，种类上限为 5。
package fluidcell

import (
	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/cells/bytecell"
	"github.com/any-hub/cellbay/internal/storage"
)

const (
	typeCost     = 8
	unitsPerByte = 256
	maxKinds     = 5
)

// Sizes 列出已注册的流体元件规格，键为介质类型。
var Sizes = map[string]bytecell.Spec{
	"fluid-cell-1k":  {Bytes: 1024, IdleDrain: 0.5},
	"fluid-cell-4k":  {Bytes: 4 * 1024, IdleDrain: 1.0},
	"fluid-cell-16k": {Bytes: 16 * 1024, IdleDrain: 1.5},
	"fluid-cell-64k": {Bytes: 64 * 1024, IdleDrain: 2.0},
}

func init() {
	for key, spec := range Sizes {
		spec.TypeCost = typeCost
		spec.UnitsPerByte = unitsPerByte
		spec.MaxKinds = maxKinds
		cellhandler.MustRegister(key, bytecell.Handler{Channel: storage.ChannelFluids, Spec: spec})
	}
}

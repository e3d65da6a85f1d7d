package config

import (
	_ "github.com/any-hub/cellbay/internal/cells/fluidcell"
	_ "github.com/any-hub/cellbay/internal/cells/itemcell"
	_ "github.com/any-hub/cellbay/internal/cells/pipebridge"
)

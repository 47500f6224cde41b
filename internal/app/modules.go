package app

import (
	"github.com/Open-EO/openeo-graph-engine/internal/registry"
	"github.com/Open-EO/openeo-graph-engine/processes/arrays"
	"github.com/Open-EO/openeo-graph-engine/processes/comparison"
	"github.com/Open-EO/openeo-graph-engine/processes/logical"
	"github.com/Open-EO/openeo-graph-engine/processes/math"
	"github.com/Open-EO/openeo-graph-engine/processes/stats"
	"github.com/Open-EO/openeo-graph-engine/processes/texts"
)

// coreModules is the definitive list of built-in process modules compiled
// into the openeo-graph binary.
var coreModules = []registry.Module{
	&arrays.Module{},
	&comparison.Module{},
	&logical.Module{},
	&math.Module{},
	&stats.Module{},
	&texts.Module{},
}

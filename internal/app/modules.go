package app

import (
	"github.com/specialistvlad/shadergen/internal/registry"
	"github.com/specialistvlad/shadergen/modules/constants"
	"github.com/specialistvlad/shadergen/modules/custom"
	"github.com/specialistvlad/shadergen/modules/operators"
	"github.com/specialistvlad/shadergen/modules/properties"
	"github.com/specialistvlad/shadergen/modules/textures"
	"github.com/specialistvlad/shadergen/modules/vertex"
)

// coreModules is the definitive list of all modules that are compiled into
// the shadergen binary.
var coreModules = []registry.Module{
	&constants.Module{},
	&properties.Module{},
	&textures.Module{},
	&operators.Module{},
	&custom.Module{},
	&vertex.Module{},
}

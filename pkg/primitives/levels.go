package primitives

// Full index spaces of each attribute. Levels index into the value tables of
// the renderer: Number level k means k+1 entities, Uniformity level 3 is the only
// uniform one, Type level 0 is "none" and therefore excluded.
var (
	NumberLevels     = Span(0, 8)
	UniformityLevels = Span(0, 3)
	TypeLevels       = Span(1, 5)
	SizeLevels       = Span(0, 5)
	ColorLevels      = Span(0, 9)
	AngleLevels      = Span(0, 7)
)

// UniformLevel is the uniformity level under which all entities of a component share
// Type, Size and Color.
const UniformLevel = 3

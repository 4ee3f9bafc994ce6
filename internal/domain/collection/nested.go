package collection

// Shape is the response shape of a nested route.
type Shape int

const (
	// ShapeList wraps results in the {count, results} envelope.
	ShapeList Shape = iota
	// ShapeBare returns results as a plain JSON array.
	ShapeBare
	// ShapeSingle returns the first matching record, or not found.
	ShapeSingle
)

// Nested route keys. Routes below a level use the "levels/{level}" prefix.
const (
	RouteLevel       = "levels/{level}"
	RouteLevelPrefix = "levels/{level}/"
)

// Nested declares a sub-resource resolved against its parent's identity:
// /api/{Parent}/{index}/{Route}.
type Nested struct {
	Parent string
	Route  string
	Child  string
	// ScopeField is the child field holding the parent's index.
	ScopeField string
	// ByLevel adds a numeric "level" condition taken from the path.
	ByLevel bool
	// RootOnly drops child records that belong to a subclass.
	RootOnly bool
	// FullRecords disables the list projection.
	FullRecords bool
	Shape       Shape
}

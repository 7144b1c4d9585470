package components

// Body holds the physical extent of an entity.
// For agents the radius is derived from energy; food keeps a fixed radius.
type Body struct {
	Radius float64
}

package settings

// chainIter walks the migration chain from a starting model, resolving each
// neighbor through registry lookups. A link pointing at an unregistered
// version ends the walk; the validator treats such chains as disjoint.
type chainIter struct {
	registry  *Registry
	direction Direction
	current   Model
}

func newChainIter(registry *Registry, start string, d Direction) *chainIter {
	model, _ := registry.Get(start)
	return &chainIter{registry: registry, direction: d, current: model}
}

// Next returns the next model in the chain, or nil when the chain ends.
func (it *chainIter) Next() Model {
	current := it.current
	if current == nil {
		return nil
	}
	it.current = nil
	if next, ok := current.MigratesTo(it.direction); ok {
		if model, found := it.registry.Get(next); found {
			it.current = model
		}
	}
	return current
}

// Route describes how to travel between two versions on a linear chain: a
// hop count where every hop shares a single direction.
type Route struct {
	Direction Direction
	Hops      int
}

// Directions materializes the route as an explicit hop sequence.
func (r Route) Directions() []Direction {
	if r.Hops <= 0 {
		return nil
	}
	directions := make([]Direction, r.Hops)
	for i := range directions {
		directions[i] = r.Direction
	}
	return directions
}

// findRoute computes the hop sequence connecting start to target, searching
// forward first and then backward. ok is false when either version is
// unknown or no route exists.
func findRoute(registry *Registry, start, target string) (Route, bool) {
	if _, known := registry.Get(start); !known {
		return Route{}, false
	}
	if start == target {
		return Route{Direction: Forward}, true
	}

	for _, direction := range []Direction{Forward, Backward} {
		iter := newChainIter(registry, start, direction)
		for hops := 0; ; hops++ {
			model := iter.Next()
			if model == nil {
				break
			}
			if model.Version() == target {
				return Route{Direction: direction, Hops: hops}, true
			}
		}
	}
	return Route{}, false
}

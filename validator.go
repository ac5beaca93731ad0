package settings

import "sort"

// validateChain proves that the registry encodes a single reversible,
// acyclic, fully connected linear chain.
//
// Starting from an arbitrary model, the chain is traversed in both
// directions. While traversing, every reached model must not have been seen
// before (loop detection) and must point back to the model that pointed to
// it (reversibility). Afterwards, any registered version missing from the
// visited set indicates a disjoint chain. Registry iteration order is
// unspecified and must not affect the outcome.
func validateChain(registry *Registry) error {
	var start Model
	registry.Range(func(_ string, model Model) bool {
		start = model
		return false
	})
	if start == nil {
		return nil
	}

	visited, err := validateInDirection(registry, start, Forward)
	if err != nil {
		return err
	}
	backward, err := validateInDirection(registry, start, Backward)
	if err != nil {
		return err
	}
	for version := range backward {
		visited[version] = struct{}{}
	}

	return disjointCheck(registry, visited)
}

func validateInDirection(registry *Registry, start Model, direction Direction) (map[string]struct{}, error) {
	visited := map[string]struct{}{start.Version(): {}}
	opposite := direction.Opposite()

	iter := newChainIter(registry, start.Version(), direction)
	previous := iter.Next()
	for {
		current := iter.Next()
		if current == nil {
			return visited, nil
		}

		version := current.Version()
		if _, seen := visited[version]; seen {
			return nil, &MigrationLoopError{Version: version}
		}
		visited[version] = struct{}{}

		back, _ := current.MigratesTo(opposite)
		if back != previous.Version() {
			return nil, &IrreversibleChainError{
				Lhs:       previous.Version(),
				Fulcrum:   version,
				Rhs:       back,
				Direction: direction,
			}
		}
		previous = current
	}
}

func disjointCheck(registry *Registry, visited map[string]struct{}) error {
	var unreachable []string
	registry.Range(func(version string, _ Model) bool {
		if _, ok := visited[version]; !ok {
			unreachable = append(unreachable, version)
		}
		return true
	})
	if len(unreachable) == 0 {
		return nil
	}

	// Sorted version lists keep the error message reproducible.
	sort.Strings(unreachable)
	visitedVersions := make([]string, 0, len(visited))
	for version := range visited {
		visitedVersions = append(visitedVersions, version)
	}
	sort.Strings(visitedVersions)

	return &DisjointChainError{Unreachable: unreachable, Visited: visitedVersions}
}

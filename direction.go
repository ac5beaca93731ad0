package settings

// Direction identifies which way a migration travels along the version chain.
type Direction int

const (
	// Forward migrates toward a newer version.
	Forward Direction = iota
	// Backward migrates toward an older version.
	Backward
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

package eval

import "fmt"

// DegenerateEdgeError reports a hop whose pool has a zero reserve.
// The cycle is unpriceable and skipped; this is an expected market
// condition, not a failure.
type DegenerateEdgeError struct {
	Pool string
	Hop  int
}

func (e *DegenerateEdgeError) Error() string {
	return fmt.Sprintf("hop %d through pool %s has a zero reserve", e.Hop, e.Pool)
}

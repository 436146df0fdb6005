package cycle

import (
	"context"
	"sync"

	"tonarb/internal/graph"
)

// Cycle is a closed path of hops starting and ending at the base
// node. Each hop carries the full edge attributes for pricing.
type Cycle struct {
	Hops []graph.Edge
}

// Path returns the node addresses along the cycle, length hops+1,
// first == last == base.
func (c Cycle) Path() []string {
	if len(c.Hops) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Hops)+1)
	out = append(out, c.Hops[0].From)
	for _, h := range c.Hops {
		out = append(out, h.To)
	}
	return out
}

// Enumerate lazily produces every cycle of exactly `hops` hops through
// base: ordered selections of hops-1 distinct intermediate nodes
// (base excluded) where every consecutive pair is connected in the
// required direction. Parallel edges between a pair make distinct
// cycles, one per venue choice per hop.
//
// The search is a backtracking walk with edge-existence pruning at
// every step, fanned out over a worker per partition of the first-hop
// edges. Cancellation is checked between iterations; the channel is
// closed once the space is exhausted or ctx is done. hops < 2 or an
// unknown base yields an immediately closed channel.
func Enumerate(ctx context.Context, g *graph.Graph, base string, hops, workers int) <-chan Cycle {
	out := make(chan Cycle, 64)
	if hops < 2 || !g.HasNode(base) {
		close(out)
		return out
	}
	if workers < 1 {
		workers = 1
	}

	var first []graph.Edge
	g.Neighbors(base, func(to string, edges []graph.Edge) {
		if to == base {
			return
		}
		first = append(first, edges...)
	})

	jobs := make(chan graph.Edge)
	go func() {
		defer close(jobs)
		for _, e := range first {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := &walker{ctx: ctx, g: g, base: base, hops: hops, out: out}
			for e := range jobs {
				checkEdge(e)
				w.used = map[string]bool{e.To: true}
				w.path = append(w.path[:0], e)
				if !w.walk(e.To) {
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

type walker struct {
	ctx  context.Context
	g    *graph.Graph
	base string
	hops int
	out  chan<- Cycle
	used map[string]bool
	path []graph.Edge
}

// walk extends the current path from cur; returns false when the
// enumeration was cancelled.
func (w *walker) walk(cur string) bool {
	select {
	case <-w.ctx.Done():
		return false
	default:
	}

	if len(w.path) == w.hops-1 {
		// closing hop back to base
		for _, e := range w.g.EdgesBetween(cur, w.base) {
			checkEdge(e)
			if !w.emit(e) {
				return false
			}
		}
		return true
	}

	ok := true
	w.g.Neighbors(cur, func(to string, edges []graph.Edge) {
		if !ok || to == w.base || w.used[to] {
			return
		}
		w.used[to] = true
		for _, e := range edges {
			checkEdge(e)
			w.path = append(w.path, e)
			if !w.walk(to) {
				ok = false
			}
			w.path = w.path[:len(w.path)-1]
			if !ok {
				break
			}
		}
		delete(w.used, to)
	})
	return ok
}

func (w *walker) emit(closing graph.Edge) bool {
	hops := make([]graph.Edge, 0, len(w.path)+1)
	hops = append(hops, w.path...)
	hops = append(hops, closing)
	select {
	case w.out <- Cycle{Hops: hops}:
		return true
	case <-w.ctx.Done():
		return false
	}
}

// checkEdge guards the enumerator's contract with the builder: every
// edge must carry pool identity and both reserves. A violation is a
// builder bug, not an input condition.
func checkEdge(e graph.Edge) {
	if e.Pool == "" || e.ReserveFrom == nil || e.ReserveTo == nil {
		panic(graph.InvariantViolation{Msg: "edge " + e.From + "->" + e.To + " missing attributes"})
	}
}

package graph

import (
	"math/big"
	"sort"

	"tonarb/internal/dex"
)

// Edge is one direction of travel through a pool. ReserveFrom is the
// reserve of the asset given up, ReserveTo the reserve of the asset
// received, regardless of which side was token0 in the pool record.
// FeeBps is the venue fee folded in at construction time so every
// consumer prices hops the same way.
type Edge struct {
	From        string
	To          string
	Venue       string
	Pool        string
	ReserveFrom *big.Int
	ReserveTo   *big.Int
	FeeBps      int64
}

// FeeMultiplier returns the retained fraction after fees as an exact
// rational, e.g. 997/1000 for 30 bps.
func (e Edge) FeeMultiplier() *big.Rat {
	return big.NewRat(feeDenominator-e.FeeBps, feeDenominator)
}

const feeDenominator = 10000

// Graph is a directed multigraph over token addresses: parallel edges
// between the same node pair (same pair, different venues) coexist.
type Graph struct {
	tokens map[string]*dex.Token
	out    map[string]map[string][]Edge
	edges  int
}

func New() *Graph {
	return &Graph{
		tokens: make(map[string]*dex.Token),
		out:    make(map[string]map[string][]Edge),
	}
}

// Build constructs a graph with one node per token and two directed
// edges per well-formed pool. Malformed pools are collected, not
// fatal; the caller decides how loudly to complain.
func Build(tokens map[string]*dex.Token, pools []dex.Pool, feeBps func(venue string) int64) (*Graph, []error) {
	g := New()
	for _, t := range tokens {
		g.AddToken(t)
	}
	var malformed []error
	for _, p := range pools {
		if err := g.AddPool(p, feeBps(p.Venue)); err != nil {
			malformed = append(malformed, err)
		}
	}
	return g, malformed
}

// AddToken registers a node for the token address.
func (g *Graph) AddToken(t *dex.Token) {
	if _, ok := g.tokens[t.Address]; !ok {
		g.tokens[t.Address] = t
		g.out[t.Address] = make(map[string][]Edge)
	}
}

// AddPool inserts both directed edges for a pool, reorienting reserves
// to match each direction of travel. Returns *MalformedPoolError when
// a side references an unregistered token.
func (g *Graph) AddPool(p dex.Pool, feeBps int64) error {
	a0, a1 := p.Token0.Address, p.Token1.Address
	if _, ok := g.tokens[a0]; !ok {
		return &MalformedPoolError{Pool: p.Address, Token: a0}
	}
	if _, ok := g.tokens[a1]; !ok {
		return &MalformedPoolError{Pool: p.Address, Token: a1}
	}
	g.addEdge(Edge{From: a0, To: a1, Venue: p.Venue, Pool: p.Address, ReserveFrom: p.Reserve0, ReserveTo: p.Reserve1, FeeBps: feeBps})
	g.addEdge(Edge{From: a1, To: a0, Venue: p.Venue, Pool: p.Address, ReserveFrom: p.Reserve1, ReserveTo: p.Reserve0, FeeBps: feeBps})
	return nil
}

func (g *Graph) addEdge(e Edge) {
	g.out[e.From][e.To] = append(g.out[e.From][e.To], e)
	g.edges++
}

func (g *Graph) HasNode(addr string) bool {
	_, ok := g.tokens[addr]
	return ok
}

// Token returns the node's token record, nil when absent.
func (g *Graph) Token(addr string) *dex.Token { return g.tokens[addr] }

func (g *Graph) NodeCount() int { return len(g.tokens) }

func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns all node addresses in sorted order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.tokens))
	for a := range g.tokens {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// EdgesBetween returns all parallel edges from -> to.
func (g *Graph) EdgesBetween(from, to string) []Edge {
	return g.out[from][to]
}

// Neighbors iterates the out-adjacency of a node: fn receives the
// target address and every parallel edge toward it.
func (g *Graph) Neighbors(from string, fn func(to string, edges []Edge)) {
	for to, es := range g.out[from] {
		fn(to, es)
	}
}

// Degree is the total (in+out) directed-edge degree of a node.
func (g *Graph) Degree(addr string) int {
	deg := 0
	for _, es := range g.out[addr] {
		deg += len(es)
	}
	for from, adj := range g.out {
		if from == addr {
			continue
		}
		deg += len(adj[addr])
	}
	return deg
}

// Reduce returns a derived graph with every node of total degree
// exactly 2 removed along with its incident edges, plus the (before,
// after) node counts. A degree-2 node trades with a single counterpart
// in a single pool, so it can never sit inside a cycle through a third
// party; dropping it shrinks the permutation space without losing any
// cycle of length >= 3. The receiver is left untouched.
func (g *Graph) Reduce() (*Graph, int, int) {
	before := g.NodeCount()

	deg := make(map[string]int, len(g.tokens))
	for from, adj := range g.out {
		for to, es := range adj {
			deg[from] += len(es)
			deg[to] += len(es)
		}
	}
	drop := make(map[string]bool)
	for addr := range g.tokens {
		if deg[addr] == 2 {
			drop[addr] = true
		}
	}

	h := New()
	for addr, t := range g.tokens {
		if !drop[addr] {
			h.AddToken(t)
		}
	}
	for from, adj := range g.out {
		if drop[from] {
			continue
		}
		for to, es := range adj {
			if drop[to] {
				continue
			}
			for _, e := range es {
				h.addEdge(e)
			}
		}
	}
	return h, before, h.NodeCount()
}

package graph

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonarb/internal/dex"
)

func tok(addr string) *dex.Token { return &dex.Token{Address: addr} }

func mkPool(addr, venue string, t0, t1 *dex.Token, r0, r1 int64) dex.Pool {
	return dex.Pool{
		Address:  addr,
		Token0:   t0,
		Token1:   t1,
		Reserve0: big.NewInt(r0),
		Reserve1: big.NewInt(r1),
		Venue:    venue,
	}
}

func flatFee(string) int64 { return 30 }

func TestBuildReorientsReserves(t *testing.T) {
	a, b := tok("A"), tok("B")
	tokens := map[string]*dex.Token{"A": a, "B": b}
	pools := []dex.Pool{mkPool("p1", "dedust", a, b, 1000, 2000)}

	g, malformed := Build(tokens, pools, flatFee)
	require.Empty(t, malformed)
	require.Equal(t, 2, g.NodeCount())
	require.Equal(t, 2, g.EdgeCount())

	fwd := g.EdgesBetween("A", "B")
	require.Len(t, fwd, 1)
	assert.Equal(t, int64(1000), fwd[0].ReserveFrom.Int64(), "A->B gives up A, so reserve_from is reserve0")
	assert.Equal(t, int64(2000), fwd[0].ReserveTo.Int64())

	rev := g.EdgesBetween("B", "A")
	require.Len(t, rev, 1)
	assert.Equal(t, int64(2000), rev[0].ReserveFrom.Int64(), "B->A gives up B, so reserve_from is reserve1")
	assert.Equal(t, int64(1000), rev[0].ReserveTo.Int64())
}

func TestBuildKeepsParallelEdges(t *testing.T) {
	a, b := tok("A"), tok("B")
	tokens := map[string]*dex.Token{"A": a, "B": b}
	pools := []dex.Pool{
		mkPool("p1", "dedust", a, b, 1000, 2000),
		mkPool("p2", "stonfi", a, b, 1100, 1900),
	}

	g, malformed := Build(tokens, pools, flatFee)
	require.Empty(t, malformed)

	fwd := g.EdgesBetween("A", "B")
	require.Len(t, fwd, 2, "same pair on two venues must keep both edges")
	venues := []string{fwd[0].Venue, fwd[1].Venue}
	assert.ElementsMatch(t, []string{"dedust", "stonfi"}, venues)
}

func TestBuildRejectsUnknownToken(t *testing.T) {
	a := tok("A")
	ghost := tok("GHOST")
	tokens := map[string]*dex.Token{"A": a}
	pools := []dex.Pool{mkPool("p1", "dedust", a, ghost, 1, 1)}

	g, malformed := Build(tokens, pools, flatFee)
	require.Len(t, malformed, 1)
	var mpe *MalformedPoolError
	require.ErrorAs(t, malformed[0], &mpe)
	assert.Equal(t, "p1", mpe.Pool)
	assert.Equal(t, "GHOST", mpe.Token)
	assert.Equal(t, 0, g.EdgeCount(), "malformed pool must not corrupt the graph")
}

func TestFeeMultiplier(t *testing.T) {
	e := Edge{FeeBps: 30}
	assert.Equal(t, big.NewRat(997, 1000), e.FeeMultiplier())
}

func TestReduceRemovesDegreeTwoNodes(t *testing.T) {
	// TON-A, A-B, B-TON form a triangle; LEAF hangs off A in a single
	// pool, so LEAF has in+out degree 2 and must go.
	ton, a, b, leaf := tok("TON"), tok("A"), tok("B"), tok("LEAF")
	tokens := map[string]*dex.Token{"TON": ton, "A": a, "B": b, "LEAF": leaf}
	pools := []dex.Pool{
		mkPool("p1", "dedust", ton, a, 1000, 2000),
		mkPool("p2", "dedust", a, b, 500, 500),
		mkPool("p3", "dedust", b, ton, 2100, 1000),
		mkPool("p4", "dedust", a, leaf, 10, 10),
	}
	g, malformed := Build(tokens, pools, flatFee)
	require.Empty(t, malformed)

	h, before, after := g.Reduce()
	assert.Equal(t, 4, before)
	assert.Equal(t, 3, after)
	assert.False(t, h.HasNode("LEAF"))
	assert.Empty(t, h.EdgesBetween("A", "LEAF"), "incident edges go with the node")

	// triangle edges survive intact
	for _, pair := range [][2]string{{"TON", "A"}, {"A", "B"}, {"B", "TON"}, {"A", "TON"}, {"B", "A"}, {"TON", "B"}} {
		assert.Len(t, h.EdgesBetween(pair[0], pair[1]), 1, "%s->%s", pair[0], pair[1])
	}

	// source graph untouched
	assert.True(t, g.HasNode("LEAF"))
	assert.Equal(t, 8, g.EdgeCount())
}

func TestReduceKeepsMultiVenueSingleCounterpart(t *testing.T) {
	// C trades only against A, but on two venues: degree 4, not 2.
	// Such a node can sit inside a cross-venue cycle and must survive.
	a, c := tok("A"), tok("C")
	tokens := map[string]*dex.Token{"A": a, "C": c}
	pools := []dex.Pool{
		mkPool("p1", "dedust", a, c, 100, 100),
		mkPool("p2", "stonfi", a, c, 90, 110),
	}
	g, _ := Build(tokens, pools, flatFee)
	h, before, after := g.Reduce()
	assert.Equal(t, before, after)
	assert.True(t, h.HasNode("C"))
}

func TestReduceEmptyGraph(t *testing.T) {
	g := New()
	h, before, after := g.Reduce()
	assert.Equal(t, 0, before)
	assert.Equal(t, 0, after)
	assert.Equal(t, 0, h.NodeCount())
}

func TestDegree(t *testing.T) {
	a, b, c := tok("A"), tok("B"), tok("C")
	tokens := map[string]*dex.Token{"A": a, "B": b, "C": c}
	pools := []dex.Pool{
		mkPool("p1", "dedust", a, b, 1, 1),
		mkPool("p2", "dedust", b, c, 1, 1),
	}
	g, _ := Build(tokens, pools, flatFee)
	assert.Equal(t, 2, g.Degree("A"))
	assert.Equal(t, 4, g.Degree("B"))
	assert.Equal(t, 2, g.Degree("C"))
}

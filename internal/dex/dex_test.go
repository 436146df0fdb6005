package dex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(addr, venue string, t0, t1 *Token) Pool {
	return Pool{
		Address:  addr,
		Token0:   t0,
		Token1:   t1,
		Reserve0: big.NewInt(1000),
		Reserve1: big.NewInt(2000),
		Venue:    venue,
	}
}

func TestRegistryMergeDedupesByAddress(t *testing.T) {
	r := NewRegistry()

	a := &Token{Address: "A", Symbol: "AAA"}
	b := &Token{Address: "B"}
	merged := r.Merge([]Pool{pool("p1", "dedust", a, b)})
	require.Len(t, merged, 1)

	// a second source observes the same addresses with fresh Token values
	a2 := &Token{Address: "A"}
	b2 := &Token{Address: "B", Symbol: "BBB"}
	merged2 := r.Merge([]Pool{pool("p2", "stonfi", a2, b2)})

	require.Equal(t, 2, r.Len())
	assert.Same(t, merged[0].Token0, merged2[0].Token0, "same address must resolve to the same record")
	assert.Same(t, merged[0].Token1, merged2[0].Token1)
}

func TestRegistryMergeAccumulatesVenues(t *testing.T) {
	r := NewRegistry()
	r.Merge([]Pool{pool("p1", "dedust", &Token{Address: "A"}, &Token{Address: "B"})})
	r.Merge([]Pool{pool("p2", "stonfi", &Token{Address: "A"}, &Token{Address: "C"})})
	r.Merge([]Pool{pool("p3", "stonfi", &Token{Address: "A"}, &Token{Address: "B"})})

	tok := r.Tokens()["A"]
	require.NotNil(t, tok)
	assert.ElementsMatch(t, []string{"dedust", "stonfi"}, tok.Venues, "venues accumulate without duplicates")
}

func TestRegistryMergeKeepsEarlierMetadata(t *testing.T) {
	r := NewRegistry()
	r.Merge([]Pool{pool("p1", "dedust", &Token{Address: "A", Symbol: "AAA", Name: "Token A"}, &Token{Address: "B"})})
	r.Merge([]Pool{pool("p2", "stonfi", &Token{Address: "A", Symbol: "ZZZ"}, &Token{Address: "B", Symbol: "BBB"})})

	assert.Equal(t, "AAA", r.Tokens()["A"].Symbol, "first observed symbol wins")
	assert.Equal(t, "BBB", r.Tokens()["B"].Symbol, "later metadata fills gaps")
}

func TestTokenDisplay(t *testing.T) {
	assert.Equal(t, "TON", (&Token{Address: "EQ...", Symbol: "TON"}).Display())
	assert.Equal(t, "EQabc", (&Token{Address: "EQabc"}).Display())
}
